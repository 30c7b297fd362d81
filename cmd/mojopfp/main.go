// Copyright 2018 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// mojopfp boots the MOJO character customization service.
//
// It connects to an Ethereum node, wires up the MojoNFT contract, IPFS
// pinning and the shared order feed, and serves the customization API.
//
// Usage:
//   mojopfp --contract <address> --keyfile <path> [flags]
//   mojopfp render --trait head=CROWN GOLD --out pfp.png
//   mojopfp mint --contract <address> --keyfile <path> --trait head=CROWN GOLD
//   mojopfp info --contract <address>
package main

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/TobyLyon/MOJOpfpMaker/compositor"
	"github.com/TobyLyon/MOJOpfpMaker/contracts/mojonft"
	"github.com/TobyLyon/MOJOpfpMaker/ipfs"
	"github.com/TobyLyon/MOJOpfpMaker/mojo"
	"github.com/TobyLyon/MOJOpfpMaker/prefs"
	"github.com/TobyLyon/MOJOpfpMaker/pricing"
	"github.com/TobyLyon/MOJOpfpMaker/server"
	"github.com/TobyLyon/MOJOpfpMaker/session"
	"github.com/TobyLyon/MOJOpfpMaker/tracker"
	"github.com/TobyLyon/MOJOpfpMaker/wallet"
)

var (
	app = cli.NewApp()

	// Flags
	rpcFlag = cli.StringFlag{
		Name:   "rpc",
		Usage:  "Ethereum JSON-RPC endpoint",
		Value:  "http://localhost:8545",
		EnvVar: "MOJO_RPC",
	}
	contractFlag = cli.StringFlag{
		Name:   "contract",
		Usage:  "Deployed MojoNFT contract address",
		EnvVar: "MOJO_CONTRACT",
	}
	keyfileFlag = cli.StringFlag{
		Name:   "keyfile",
		Usage:  "Path to the JSON keyfile for the minting wallet",
		EnvVar: "MOJO_KEYFILE",
	}
	passwordFlag = cli.StringFlag{
		Name:   "password",
		Usage:  "Keyfile passphrase",
		EnvVar: "MOJO_PASSWORD",
	}
	feeWalletFlag = cli.StringFlag{
		Name:   "feewallet",
		Usage:  "Platform fee wallet address",
		EnvVar: "MOJO_FEE_WALLET",
	}
	pinataFlag = cli.StringFlag{
		Name:   "pinata-jwt",
		Usage:  "Pinata API JWT for IPFS pinning",
		EnvVar: "PINATA_JWT",
	}
	supabaseURLFlag = cli.StringFlag{
		Name:   "supabase-url",
		Usage:  "Supabase project URL for the shared order feed (optional)",
		EnvVar: "SUPABASE_URL",
	}
	supabaseKeyFlag = cli.StringFlag{
		Name:   "supabase-key",
		Usage:  "Supabase anon key",
		EnvVar: "SUPABASE_ANON_KEY",
	}
	tokenFlag = cli.StringFlag{
		Name:   "mojo-token",
		Usage:  "MOJO token contract address for the price feed",
		EnvVar: "MOJO_TOKEN",
	}
	assetsFlag = cli.StringFlag{
		Name:   "assets",
		Usage:  "Directory holding the trait layer images",
		Value:  "assets",
		EnvVar: "MOJO_ASSETS",
	}
	prefsFlag = cli.StringFlag{
		Name:   "prefs",
		Usage:  "Path of the local preference database",
		Value:  "mojopfp.db",
		EnvVar: "MOJO_PREFS",
	}
	listenFlag = cli.StringFlag{
		Name:   "listen",
		Usage:  "HTTP listen address",
		Value:  ":8560",
		EnvVar: "MOJO_LISTEN",
	}
	traitFlag = cli.StringSliceFlag{
		Name:  "trait",
		Usage: "Trait selection as category=id (repeatable)",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "Output PNG path",
		Value: "mojo-pfp.png",
	}
	randomFlag = cli.BoolFlag{
		Name:  "random",
		Usage: "Randomize the selection before rendering",
	}
)

func init() {
	app.Name = "mojopfp"
	app.Usage = "MOJO character customization and mint service"
	app.Version = "0.1.0"
	app.Action = run
	app.Flags = []cli.Flag{
		rpcFlag,
		contractFlag,
		keyfileFlag,
		passwordFlag,
		feeWalletFlag,
		pinataFlag,
		supabaseURLFlag,
		supabaseKeyFlag,
		tokenFlag,
		assetsFlag,
		prefsFlag,
		listenFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:   "render",
			Usage:  "Render a character to a PNG file without minting",
			Action: renderCmd,
			Flags:  []cli.Flag{assetsFlag, traitFlag, outFlag, randomFlag},
		},
		{
			Name:   "mint",
			Usage:  "Mint a trait combination without running the server",
			Action: mintCmd,
			Flags: []cli.Flag{
				rpcFlag, contractFlag, keyfileFlag, passwordFlag,
				feeWalletFlag, pinataFlag, assetsFlag, traitFlag,
			},
		},
		{
			Name:   "quote",
			Usage:  "Quote a selection in MOJO at the live rate",
			Action: quoteCmd,
			Flags:  []cli.Flag{tokenFlag, traitFlag},
		},
		{
			Name:   "info",
			Usage:  "Print contract state",
			Action: infoCmd,
			Flags:  []cli.Flag{rpcFlag, contractFlag},
		},
	}
}

func main() {
	// Local overrides come from a .env next to the binary; absence is fine.
	godotenv.Load()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() {
	log.Root().SetHandler(log.LvlFilterHandler(log.LvlInfo, log.StreamHandler(os.Stderr, log.TerminalFormat(true))))
}

func run(ctx *cli.Context) error {
	setupLogging()

	if !ctx.IsSet("contract") {
		utils.Fatalf("--contract flag is required")
	}
	if !ctx.IsSet("keyfile") {
		utils.Fatalf("--keyfile flag is required")
	}
	if !ctx.IsSet("pinata-jwt") {
		utils.Fatalf("--pinata-jwt flag is required")
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Price oracle follows the MOJO token on a fixed interval.
	oracle := pricing.NewOracle(ctx.String("mojo-token"), nil)
	go oracle.Poll(rootCtx)

	// Wallet session: the provider dials the node and decrypts the keyfile.
	provider := wallet.NewKeystoreProvider(
		ctx.String("rpc"),
		ctx.String("keyfile"),
		ctx.String("password"),
		common.HexToAddress(ctx.String("feewallet")),
	)
	connector := wallet.NewConnector(provider)
	connector.OnChainChanged(func(id *big.Int) {
		log.Error("Chain switched under the running service, bindings stale until restart", "chain", id)
	})
	if err := connector.Connect(rootCtx); err != nil {
		utils.Fatalf("Wallet connection failed: %v", err)
	}
	client, err := provider.Client()
	if err != nil {
		utils.Fatalf("Wallet session unavailable: %v", err)
	}
	opts, err := provider.TransactOpts()
	if err != nil {
		utils.Fatalf("Transactor setup failed: %v", err)
	}

	contractAddr := common.HexToAddress(ctx.String("contract"))
	nft, err := mojonft.NewMojoNFT(opts, contractAddr, client)
	if err != nil {
		utils.Fatalf("Contract binding failed: %v", err)
	}

	pinner, err := ipfs.NewClient(ctx.String("pinata-jwt"), nil)
	if err != nil {
		utils.Fatalf("IPFS client setup failed: %v", err)
	}

	// The shared order feed is optional: without Supabase the service still
	// mints, it just keeps no communal history.
	var (
		recorder *tracker.Recorder
		feed     *tracker.LiveFeed
	)
	if url := ctx.String("supabase-url"); url != "" {
		recorder = tracker.NewRecorder(url, ctx.String("supabase-key"), nil)
		feed = tracker.NewLiveFeed(url, ctx.String("supabase-key"))
		go feed.Run(rootCtx)
	}

	store, err := prefs.Open(ctx.String("prefs"))
	if err != nil {
		utils.Fatalf("Preference database failed: %v", err)
	}
	defer store.Close()

	// Without a fee wallet the fee stage is skipped entirely; wiring the
	// provider anyway would burn the fee at the zero address.
	var payer mojo.FeePayer
	if ctx.String("feewallet") != "" {
		payer = provider
	}
	pipeline := mojo.NewPipeline(nft, pinner, mojo.NewDefaultFeeSchedule(), mojonft.ParseMintedTokenID, payer, recorderOrNil(recorder))
	sess := session.New(session.Config{
		Compositor: compositor.New(compositor.NewDirSource(ctx.String("assets"))),
		Oracle:     oracle,
		Connector:  connector,
		Pipeline:   pipeline,
		Recorder:   recorder,
		Feed:       feed,
		Store:      store,
	})
	defer sess.Close()

	var orders <-chan tracker.Order
	if feed != nil {
		orders = feed.Orders()
	}
	srv := server.New(sess, orders)
	go srv.Run(rootCtx)

	log.Info("MOJO PFP service ready",
		"listen", ctx.String("listen"),
		"contract", contractAddr,
		"rate", oracle.Rate(),
	)
	return http.ListenAndServe(ctx.String("listen"), srv.Router())
}

// recorderOrNil keeps the pipeline's optional recorder truly nil when no
// Supabase project is configured.
func recorderOrNil(r *tracker.Recorder) mojo.Recorder {
	if r == nil {
		return nil
	}
	return r
}

func renderCmd(ctx *cli.Context) error {
	setupLogging()

	order := mojo.NewOrder()
	if ctx.Bool("random") {
		order.Randomize(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	if err := applyTraits(order, ctx.StringSlice("trait")); err != nil {
		return err
	}

	comp := compositor.New(compositor.NewDirSource(ctx.String("assets")))
	img, err := comp.Render(context.Background(), order.Selections())
	if err != nil {
		return err
	}
	data, err := compositor.EncodePNG(img)
	if err != nil {
		return err
	}
	out := ctx.String("out")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	log.Info("Character rendered", "out", out, "traits", len(order.Selections()),
		"rarity", mojo.RarityScore(order.Selections()))
	return nil
}

// mintCmd runs the mint pipeline once for a trait combination given on the
// command line, without serving HTTP.
func mintCmd(ctx *cli.Context) error {
	setupLogging()

	if !ctx.IsSet("contract") {
		utils.Fatalf("--contract flag is required")
	}
	if !ctx.IsSet("keyfile") {
		utils.Fatalf("--keyfile flag is required")
	}
	if !ctx.IsSet("pinata-jwt") {
		utils.Fatalf("--pinata-jwt flag is required")
	}

	order := mojo.NewOrder()
	if err := applyTraits(order, ctx.StringSlice("trait")); err != nil {
		return err
	}

	rootCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	provider := wallet.NewKeystoreProvider(
		ctx.String("rpc"),
		ctx.String("keyfile"),
		ctx.String("password"),
		common.HexToAddress(ctx.String("feewallet")),
	)
	connector := wallet.NewConnector(provider)
	if err := connector.Connect(rootCtx); err != nil {
		utils.Fatalf("Wallet connection failed: %v", err)
	}
	defer connector.Disconnect()

	client, err := provider.Client()
	if err != nil {
		utils.Fatalf("Wallet session unavailable: %v", err)
	}
	opts, err := provider.TransactOpts()
	if err != nil {
		utils.Fatalf("Transactor setup failed: %v", err)
	}
	nft, err := mojonft.NewMojoNFT(opts, common.HexToAddress(ctx.String("contract")), client)
	if err != nil {
		utils.Fatalf("Contract binding failed: %v", err)
	}
	pinner, err := ipfs.NewClient(ctx.String("pinata-jwt"), nil)
	if err != nil {
		utils.Fatalf("IPFS client setup failed: %v", err)
	}

	comp := compositor.New(compositor.NewDirSource(ctx.String("assets")))
	img, err := comp.Render(rootCtx, order.Selections())
	if err != nil {
		return err
	}
	data, err := compositor.EncodePNG(img)
	if err != nil {
		return err
	}

	var payer mojo.FeePayer
	if ctx.String("feewallet") != "" {
		payer = provider
	}
	pipeline := mojo.NewPipeline(nft, pinner, mojo.NewDefaultFeeSchedule(), mojonft.ParseMintedTokenID, payer, nil)

	recipient, err := connector.Address()
	if err != nil {
		return err
	}
	receipt, err := pipeline.Mint(rootCtx, &mojo.MintRequest{
		Recipient:  recipient,
		Selections: order.Selections(),
		Image:      data,
	})
	if err != nil {
		utils.Fatalf("Mint failed (%s): %v", mojo.Classify(err), err)
	}
	log.Info("Mint complete",
		"token", receipt.TokenID,
		"tx", receipt.TxHash,
		"uri", receipt.TokenURI,
		"image", receipt.ImageCID,
	)
	return nil
}

func quoteCmd(ctx *cli.Context) error {
	setupLogging()

	order := mojo.NewOrder()
	if err := applyTraits(order, ctx.StringSlice("trait")); err != nil {
		return err
	}
	oracle := pricing.NewOracle(ctx.String("mojo-token"), nil)
	refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := oracle.Refresh(refreshCtx); err != nil {
		log.Warn("Live rate unavailable, quoting at fallback", "err", err)
	}

	q := oracle.OrderTotal(order.TraitPriceUSD())
	fmt.Printf("Base:   %s\n", pricing.FormatMojo(q.BaseMojo))
	fmt.Printf("Traits: %s\n", pricing.FormatMojo(q.TraitMojo))
	fmt.Printf("Gas:    %s\n", pricing.FormatMojo(q.GasMojo))
	fmt.Printf("Total:  %s  (1 MOJO = $%g)\n", pricing.FormatMojo(q.TotalMojo), q.RateUSD)
	return nil
}

func infoCmd(ctx *cli.Context) error {
	setupLogging()

	if !ctx.IsSet("contract") {
		utils.Fatalf("--contract flag is required")
	}
	client, err := ethclient.Dial(ctx.String("rpc"))
	if err != nil {
		utils.Fatalf("Node connection failed: %v", err)
	}
	defer client.Close()

	nft, err := mojonft.NewMojoNFT(nil, common.HexToAddress(ctx.String("contract")), client)
	if err != nil {
		utils.Fatalf("Contract binding failed: %v", err)
	}
	callCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	price, err := nft.MintPrice(callCtx)
	if err != nil {
		utils.Fatalf("Mint price read failed: %v", err)
	}
	active, err := nft.MintingActive(callCtx)
	if err != nil {
		utils.Fatalf("Minting status read failed: %v", err)
	}
	supply, err := nft.TotalSupply(callCtx)
	if err != nil {
		utils.Fatalf("Supply read failed: %v", err)
	}
	max, err := nft.MaxSupply(callCtx)
	if err != nil {
		utils.Fatalf("Max supply read failed: %v", err)
	}

	log.Info("MojoNFT contract info",
		"address", ctx.String("contract"),
		"mintPrice", price,
		"active", active,
		"minted", fmt.Sprintf("%s/%s", supply, max),
	)
	return nil
}

// applyTraits parses category=id pairs onto the order.
func applyTraits(order *mojo.Order, pairs []string) error {
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid --trait %q, want category=id", pair)
		}
		if err := order.Select(mojo.Category(parts[0]), parts[1]); err != nil {
			return err
		}
	}
	return nil
}
