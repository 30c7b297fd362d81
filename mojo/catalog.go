// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package mojo

// Default selections per category.  An empty id means no layer; NORMAL eyes
// and mouth are the base expression and likewise contribute no overlay and
// no metadata attribute.
const (
	DefaultBackground = ""
	DefaultClothes    = ""
	DefaultEyes       = "NORMAL"
	DefaultHead       = ""
	DefaultMouth      = "NORMAL"
)

// DefaultID returns the default option id for a category.
func DefaultID(c Category) string {
	switch c {
	case CategoryEyes:
		return DefaultEyes
	case CategoryMouth:
		return DefaultMouth
	default:
		return ""
	}
}

// DefaultName returns the display name shown when a category holds its default.
func DefaultName(c Category) string {
	switch c {
	case CategoryBackground:
		return "No Background"
	case CategoryClothes:
		return "No Clothes"
	case CategoryEyes:
		return "Normal Eyes"
	case CategoryHead:
		return "No Headwear"
	case CategoryMouth:
		return "Normal Mouth"
	default:
		return "None"
	}
}

// Catalog is the static trait menu.  Options are immutable after load.
var Catalog = map[Category][]TraitOption{
	CategoryBackground: {
		{ID: "", Name: "None", Description: "No background", PriceUSD: 0},
		{ID: "BLUE", Name: "Blue", Description: "Blue atmosphere", PriceUSD: 0.25},
		{ID: "CAVE", Name: "Cave", Description: "Underground setting", PriceUSD: 0.25},
		{ID: "CLIFF", Name: "Cliff", Description: "Mountain cliff", PriceUSD: 0.25},
		{ID: "GREEN", Name: "Green", Description: "Forest vibes", PriceUSD: 0.25},
		{ID: "RED", Name: "Red", Description: "Fiery atmosphere", PriceUSD: 0.25},
		{ID: "SHRINE", Name: "Shrine", Description: "Temple grounds", PriceUSD: 0.25},
		{ID: "TRAIN", Name: "Train", Description: "Moving train", PriceUSD: 0.25},
	},
	CategoryClothes: {
		{ID: "", Name: "None", Description: "No clothing", PriceUSD: 0},
		{ID: "ABSTRACT KIMONO", Name: "Abstract Kimono", Description: "Artistic wear", PriceUSD: 1.00},
		{ID: "ABSTRACT SHIRT", Name: "Abstract Shirt", Description: "Modern design", PriceUSD: 0.75},
		{ID: "APRON BLACK", Name: "Black Apron", Description: "Chef style", PriceUSD: 0.50},
		{ID: "APRON BLUE", Name: "Blue Apron", Description: "Kitchen pro", PriceUSD: 0.50},
		{ID: "BLACK BOWTIE SUIT", Name: "Black Suit", Description: "Formal wear", PriceUSD: 1.50},
		{ID: "BLUE SUIT", Name: "Blue Suit", Description: "Business style", PriceUSD: 1.25},
		{ID: "KIMONO BLACK", Name: "Black Kimono", Description: "Traditional Japanese elegance", PriceUSD: 1.25},
		{ID: "KIMONO BLUE", Name: "Blue Kimono", Description: "Serene traditional wear", PriceUSD: 1.25},
		{ID: "KIMONO PINK", Name: "Pink Kimono", Description: "Cherry blossom style", PriceUSD: 1.25},
		{ID: "KIMONO YELLOW", Name: "Yellow Kimono", Description: "Golden sunrise style", PriceUSD: 1.25},
		{ID: "PUDGY SHIRT", Name: "Pudgy Shirt", Description: "Cute and comfy", PriceUSD: 0.75},
		{ID: "SCARF BLACK", Name: "Black Scarf", Description: "Cozy winter accessory", PriceUSD: 0.50},
		{ID: "SCARF GRAY", Name: "Gray Scarf", Description: "Neutral warmth", PriceUSD: 0.50},
		{ID: "SCARF GREEN", Name: "Green Scarf", Description: "Forest fresh style", PriceUSD: 0.50},
		{ID: "SCARF RED", Name: "Red Scarf", Description: "Bold winter fashion", PriceUSD: 0.50},
		{ID: "SCARF YELLOW", Name: "Yellow Scarf", Description: "Sunny winter vibes", PriceUSD: 0.50},
		{ID: "SHIRT BLACK", Name: "Black Shirt", Description: "Classic casual wear", PriceUSD: 0.50},
		{ID: "SHIRT GRAY", Name: "Gray Shirt", Description: "Comfortable everyday", PriceUSD: 0.50},
		{ID: "SHIRT RED", Name: "Red Shirt", Description: "Bold statement piece", PriceUSD: 0.50},
		{ID: "SHIRT WHITE GREEN", Name: "White Green Shirt", Description: "Fresh color combo", PriceUSD: 0.60},
		{ID: "SHIRT WHITE ORANGE", Name: "White Orange Shirt", Description: "Vibrant design", PriceUSD: 0.60},
		{ID: "SOLANA SHIRT", Name: "Solana Shirt", Description: "Crypto enthusiast gear", PriceUSD: 0.75},
		{ID: "SUIT", Name: "Formal Suit", Description: "Classic business attire", PriceUSD: 1.00},
		{ID: "TACTICAL SUIT BLACK", Name: "Black Tactical Suit", Description: "Military precision", PriceUSD: 1.75},
		{ID: "TACTICAL SUIT BLUE", Name: "Blue Tactical Suit", Description: "Professional operations", PriceUSD: 1.75},
		{ID: "TACTICAL SUIT CAMO", Name: "Camo Tactical Suit", Description: "Stealth operations", PriceUSD: 1.75},
		{ID: "TACTICAL SUIT GREEN", Name: "Green Tactical Suit", Description: "Field operations", PriceUSD: 1.75},
		{ID: "TURTLE NECK BLACK", Name: "Black Turtleneck", Description: "Sleek modern style", PriceUSD: 0.75},
		{ID: "TURTLE NECK GRAY", Name: "Gray Turtleneck", Description: "Sophisticated comfort", PriceUSD: 0.75},
		{ID: "TURTLE NECK GREEN", Name: "Green Turtleneck", Description: "Nature-inspired style", PriceUSD: 0.75},
		{ID: "TURTLE NECK RED", Name: "Red Turtleneck", Description: "Bold fashion choice", PriceUSD: 0.75},
		{ID: "TURTLE NECK WHITE", Name: "White Turtleneck", Description: "Clean minimalist look", PriceUSD: 0.75},
	},
	CategoryEyes: {
		{ID: "NORMAL", Name: "Normal Eyes", Description: "Standard friendly look", PriceUSD: 0},
		{ID: "ANGRY", Name: "Angry Eyes", Description: "Fierce and determined", PriceUSD: 0.50},
		{ID: "BORED", Name: "Bored Eyes", Description: "Unimpressed expression", PriceUSD: 0.50},
		{ID: "CLEAR GLASS", Name: "Clear Glasses", Description: "Intellectual vibes", PriceUSD: 0.75},
		{ID: "CLOSE", Name: "Closed Eyes", Description: "Peaceful meditation", PriceUSD: 0.50},
		{ID: "EYE SHINE", Name: "Eye Shine", Description: "Bright and alert", PriceUSD: 0.75},
		{ID: "GLASSES BLACK", Name: "Black Glasses", Description: "Cool and smart", PriceUSD: 0.75},
		{ID: "GLASSES BLUE", Name: "Blue Glasses", Description: "Stylish blue frames", PriceUSD: 0.75},
		{ID: "GLASSES GREEN", Name: "Green Glasses", Description: "Nature-inspired frames", PriceUSD: 0.75},
		{ID: "GLASSES ORANGE", Name: "Orange Glasses", Description: "Bold orange style", PriceUSD: 0.75},
		{ID: "GLASSES YELLOW", Name: "Yellow Glasses", Description: "Sunny yellow frames", PriceUSD: 0.75},
		{ID: "HUH", Name: "Confused Eyes", Description: "Puzzled expression", PriceUSD: 0.50},
		{ID: "LOWE LID", Name: "Lower Lid", Description: "Sleepy expression", PriceUSD: 0.50},
		{ID: "SAD", Name: "Sad Eyes", Description: "Melancholy mood", PriceUSD: 0.50},
		{ID: "SQUINT", Name: "Squinting Eyes", Description: "Focused concentration", PriceUSD: 0.50},
		{ID: "STAR SHINE", Name: "Star Shine", Description: "Magical sparkle", PriceUSD: 1.00},
		{ID: "SURPRISED", Name: "Surprised Eyes", Description: "Wide-eyed wonder", PriceUSD: 0.50},
		{ID: "TEARY", Name: "Teary Eyes", Description: "Emotional moment", PriceUSD: 0.50},
		{ID: "WINK", Name: "Winking Eye", Description: "Playful charm", PriceUSD: 0.50},
	},
	CategoryHead: {
		{ID: "", Name: "No Headwear", Description: "Clean and minimal look", PriceUSD: 0},
		{ID: "Beanie Black", Name: "Black Beanie", Description: "Cozy winter warmth", PriceUSD: 0.50},
		{ID: "Beanie Blue", Name: "Blue Beanie", Description: "Cool arctic style", PriceUSD: 0.50},
		{ID: "Beanie Green", Name: "Green Beanie", Description: "Forest fresh style", PriceUSD: 0.50},
		{ID: "Beanie Orange", Name: "Orange Beanie", Description: "Vibrant autumn vibes", PriceUSD: 0.50},
		{ID: "Beanie Red", Name: "Red Beanie", Description: "Bold winter style", PriceUSD: 0.50},
		{ID: "BIKER HELMET", Name: "Biker Helmet", Description: "Road warrior protection", PriceUSD: 1.25},
		{ID: "Cap Black", Name: "Black Cap", Description: "Classic street style", PriceUSD: 0.75},
		{ID: "Cap Blue", Name: "Blue Cap", Description: "Casual blue style", PriceUSD: 0.75},
		{ID: "Cap Red", Name: "Red Cap", Description: "Bold statement piece", PriceUSD: 0.75},
		{ID: "CROWN GOLD", Name: "Golden Crown", Description: "Royal MOJO status", PriceUSD: 2.00},
		{ID: "CROWN GREEN", Name: "Emerald Crown", Description: "Mystical royalty", PriceUSD: 2.00},
		{ID: "CROWN RED", Name: "Ruby Crown", Description: "Fiery leadership", PriceUSD: 2.00},
		{ID: "FISH", Name: "Fish Hat", Description: "Aquatic adventure", PriceUSD: 1.00},
		{ID: "FISHERMAN HAT", Name: "Fisherman Hat", Description: "Deep sea explorer", PriceUSD: 0.75},
		{ID: "MOJI", Name: "MOJI Special", Description: "Signature MOJO style", PriceUSD: 1.50},
		{ID: "Newsboy Black", Name: "Black Newsboy", Description: "Vintage newspaper style", PriceUSD: 0.75},
		{ID: "Newsboy Brown", Name: "Brown Newsboy", Description: "Classic brown leather", PriceUSD: 0.75},
		{ID: "Party Hat Green", Name: "Green Party Hat", Description: "Celebration time", PriceUSD: 0.60},
		{ID: "Party Hat Orange", Name: "Orange Party Hat", Description: "Festive orange style", PriceUSD: 0.60},
		{ID: "Party Hat Red", Name: "Red Party Hat", Description: "Bold party vibes", PriceUSD: 0.60},
		{ID: "Snapback Black", Name: "Black Snapback", Description: "Urban street style", PriceUSD: 0.75},
		{ID: "Snapback Blue", Name: "Blue Snapback", Description: "Urban arctic style", PriceUSD: 0.75},
		{ID: "Snapback Gray", Name: "Gray Snapback", Description: "Neutral urban style", PriceUSD: 0.75},
		{ID: "Snapback Red", Name: "Red Snapback", Description: "Bold urban statement", PriceUSD: 0.75},
		{ID: "SNOW", Name: "Snow Hat", Description: "Winter wonderland style", PriceUSD: 0.60},
		{ID: "SUSHI", Name: "Sushi Hat", Description: "Japanese delicacy", PriceUSD: 1.25},
		{ID: "THREAD BLACK", Name: "Black Thread", Description: "Minimalist thread style", PriceUSD: 0.40},
		{ID: "THREAD GREEN", Name: "Green Thread", Description: "Nature thread style", PriceUSD: 0.40},
		{ID: "THREAD RED", Name: "Red Thread", Description: "Bold thread accent", PriceUSD: 0.40},
		{ID: "THREAD YELLOW", Name: "Yellow Thread", Description: "Bright thread style", PriceUSD: 0.40},
		{ID: "VIKING HELMET BLACK", Name: "Black Viking Helmet", Description: "Nordic warrior", PriceUSD: 1.75},
		{ID: "VIKING HELMET BROWN", Name: "Brown Viking Helmet", Description: "Ancient warrior", PriceUSD: 1.75},
	},
	CategoryMouth: {
		{ID: "NORMAL", Name: "Normal Mouth", Description: "Friendly expression", PriceUSD: 0},
		{ID: "GRIN", Name: "Big Grin", Description: "Happy and excited", PriceUSD: 0.25},
		{ID: "MEH", Name: "Meh Expression", Description: "Unimpressed look", PriceUSD: 0.25},
		{ID: "OOHH", Name: "Surprised Ooh", Description: "Amazed reaction", PriceUSD: 0.50},
		{ID: "OPEN MOUTH", Name: "Open Mouth", Description: "Shocked expression", PriceUSD: 0.50},
		{ID: "POUT", Name: "Pouty Lips", Description: "Cute disappointed look", PriceUSD: 0.50},
		{ID: "SAD", Name: "Sad Mouth", Description: "Melancholy mood", PriceUSD: 0.25},
		{ID: "SIDE GRIN", Name: "Side Grin", Description: "Mischievous smile", PriceUSD: 0.50},
		{ID: "TOOTHPICK", Name: "Toothpick", Description: "Cool and casual", PriceUSD: 0.75},
		{ID: "TOUNGE", Name: "Tongue Out", Description: "Playful and silly", PriceUSD: 0.50},
	},
}

// Options returns the selectable options for a category.
func Options(c Category) []TraitOption {
	return Catalog[c]
}

// FindOption looks up an option by id within a category.
func FindOption(c Category, id string) (TraitOption, bool) {
	for _, opt := range Catalog[c] {
		if opt.ID == id {
			return opt, true
		}
	}
	return TraitOption{}, false
}
