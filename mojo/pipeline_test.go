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

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeContract struct {
	addr       common.Address
	price      *big.Int
	active     bool
	taken      bool
	takenErr   error
	mintErr    error
	mintStatus uint64

	mintedValue *big.Int
	mintedURI   string
	mintCalls   int
}

func (c *fakeContract) Address() common.Address { return c.addr }

func (c *fakeContract) MintPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.price), nil
}

func (c *fakeContract) MintingActive(ctx context.Context) (bool, error) {
	return c.active, nil
}

func (c *fakeContract) TraitExists(ctx context.Context, traitHash common.Hash) (bool, error) {
	return c.taken, c.takenErr
}

func (c *fakeContract) MintToEscrow(ctx context.Context, recipient common.Address, tokenURI string, traitHash common.Hash, value *big.Int) (*types.Receipt, error) {
	c.mintCalls++
	if c.mintErr != nil {
		return nil, c.mintErr
	}
	c.mintedValue = new(big.Int).Set(value)
	c.mintedURI = tokenURI
	return &types.Receipt{
		Status: c.mintStatus,
		TxHash: common.HexToHash("0xabc123"),
	}, nil
}

type fakePinner struct {
	fileCID, jsonCID string
	fileErr, jsonErr error
	fileCalls        int
	lastJSON         interface{}
}

func (p *fakePinner) PinFile(ctx context.Context, name string, data []byte) (string, error) {
	p.fileCalls++
	return p.fileCID, p.fileErr
}

func (p *fakePinner) PinJSON(ctx context.Context, v interface{}) (string, error) {
	p.lastJSON = v
	return p.jsonCID, p.jsonErr
}

type fakePayer struct {
	err   error
	paid  *big.Int
	calls int
}

func (f *fakePayer) TransferFee(ctx context.Context, amount *big.Int) (common.Hash, error) {
	f.calls++
	if f.err != nil {
		return common.Hash{}, f.err
	}
	f.paid = new(big.Int).Set(amount)
	return common.HexToHash("0xfee"), nil
}

type fakeRecorder struct {
	err      error
	recorded *MintReceipt
}

func (f *fakeRecorder) RecordMint(ctx context.Context, receipt *MintReceipt, sels []Selection, wallet common.Address) error {
	f.recorded = receipt
	return f.err
}

func staticParser(id string, ok bool) TokenIDParser {
	return func(*types.Receipt, common.Address) (string, bool) { return id, ok }
}

func testRequest() *MintRequest {
	return &MintRequest{
		Recipient: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Selections: []Selection{
			{Category: CategoryBackground, ID: "BLUE", Name: "Blue"},
			{Category: CategoryHead, ID: "CROWN GOLD", Name: "Golden Crown"},
		},
		Image: []byte("png-bytes"),
	}
}

func TestPipelineMint(t *testing.T) {
	contract := &fakeContract{
		addr:       common.HexToAddress("0x2222222222222222222222222222222222222222"),
		price:      big.NewInt(1_000_000),
		active:     true,
		mintStatus: types.ReceiptStatusSuccessful,
	}
	pinner := &fakePinner{fileCID: "QmImage", jsonCID: "QmMeta"}
	payer := &fakePayer{}
	rec := &fakeRecorder{}
	p := NewPipeline(contract, pinner, NewDefaultFeeSchedule(), staticParser("42", true), payer, rec)

	out, err := p.Mint(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if out.TokenID != "42" {
		t.Errorf("token id = %q", out.TokenID)
	}
	if out.TokenURI != "ipfs://QmMeta" || out.ImageCID != "QmImage" {
		t.Errorf("receipt = %+v", out)
	}
	// 5% of 1_000_000 goes to the platform, the rest to the contract.
	if payer.paid == nil || payer.paid.Int64() != 50_000 {
		t.Errorf("fee paid = %v, want 50000", payer.paid)
	}
	if contract.mintedValue.Int64() != 950_000 {
		t.Errorf("mint value = %v, want 950000", contract.mintedValue)
	}
	if rec.recorded == nil || rec.recorded.TokenID != "42" {
		t.Errorf("recorded = %+v", rec.recorded)
	}
}

func TestPipelineTraitTakenAbortsBeforeUpload(t *testing.T) {
	contract := &fakeContract{price: big.NewInt(1), active: true, taken: true}
	pinner := &fakePinner{fileCID: "QmImage", jsonCID: "QmMeta"}
	p := NewPipeline(contract, pinner, nil, nil, nil, nil)

	_, err := p.Mint(context.Background(), testRequest())
	if !errors.Is(err, ErrTraitTaken) {
		t.Fatalf("err = %v, want ErrTraitTaken", err)
	}
	if Classify(err) != FailureValidation {
		t.Errorf("classify = %v, want validation", Classify(err))
	}
	if pinner.fileCalls != 0 {
		t.Error("duplicate trait must abort before any upload")
	}
	if contract.mintCalls != 0 {
		t.Error("duplicate trait must abort before the transaction")
	}
}

func TestPipelineUniquenessCheckAdvisory(t *testing.T) {
	// A failing uniqueness query must not block the mint.
	contract := &fakeContract{
		price:      big.NewInt(1_000_000),
		active:     true,
		takenErr:   errors.New("rpc timeout"),
		mintStatus: types.ReceiptStatusSuccessful,
	}
	pinner := &fakePinner{fileCID: "QmImage", jsonCID: "QmMeta"}
	p := NewPipeline(contract, pinner, nil, staticParser("7", true), nil, nil)

	out, err := p.Mint(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("mint should proceed past a failed check: %v", err)
	}
	if out.TokenID != "7" {
		t.Errorf("token id = %q", out.TokenID)
	}
}

func TestPipelineMintingClosed(t *testing.T) {
	contract := &fakeContract{price: big.NewInt(1), active: false}
	p := NewPipeline(contract, &fakePinner{}, nil, nil, nil, nil)

	_, err := p.Mint(context.Background(), testRequest())
	if !errors.Is(err, ErrMintingClosed) {
		t.Fatalf("err = %v, want ErrMintingClosed", err)
	}
}

func TestPipelineFeeTransferBestEffort(t *testing.T) {
	contract := &fakeContract{
		price:      big.NewInt(1_000_000),
		active:     true,
		mintStatus: types.ReceiptStatusSuccessful,
	}
	payer := &fakePayer{err: errors.New("fee wallet unreachable")}
	p := NewPipeline(contract, &fakePinner{fileCID: "QmI", jsonCID: "QmM"}, nil, staticParser("1", true), payer, nil)

	if _, err := p.Mint(context.Background(), testRequest()); err != nil {
		t.Fatalf("fee transfer failure must not fail the mint: %v", err)
	}
	if payer.calls != 1 {
		t.Errorf("fee transfer attempts = %d", payer.calls)
	}
}

func TestPipelineRecordingBestEffort(t *testing.T) {
	contract := &fakeContract{
		price:      big.NewInt(100),
		active:     true,
		mintStatus: types.ReceiptStatusSuccessful,
	}
	rec := &fakeRecorder{err: errors.New("supabase down")}
	p := NewPipeline(contract, &fakePinner{fileCID: "QmI", jsonCID: "QmM"}, nil, staticParser("1", true), nil, rec)

	if _, err := p.Mint(context.Background(), testRequest()); err != nil {
		t.Fatalf("recording failure must not fail the mint: %v", err)
	}
}

func TestPipelineTokenIDUnknown(t *testing.T) {
	contract := &fakeContract{
		price:      big.NewInt(100),
		active:     true,
		mintStatus: types.ReceiptStatusSuccessful,
	}
	p := NewPipeline(contract, &fakePinner{fileCID: "QmI", jsonCID: "QmM"}, nil, staticParser("", false), nil, nil)

	out, err := p.Mint(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if out.TokenID != TokenIDUnknown {
		t.Errorf("token id = %q, want %q", out.TokenID, TokenIDUnknown)
	}
}

func TestPipelineUploadFailureClassified(t *testing.T) {
	contract := &fakeContract{price: big.NewInt(100), active: true}
	pinner := &fakePinner{fileErr: errors.New("pinata 500")}
	p := NewPipeline(contract, pinner, nil, nil, nil, nil)

	_, err := p.Mint(context.Background(), testRequest())
	if err == nil || Classify(err) != FailureUpload {
		t.Fatalf("err = %v, classify = %v, want upload", err, Classify(err))
	}
	if contract.mintCalls != 0 {
		t.Error("upload failure must stop before the transaction")
	}
}

func TestPipelineRevertedReceipt(t *testing.T) {
	contract := &fakeContract{
		price:      big.NewInt(100),
		active:     true,
		mintStatus: types.ReceiptStatusFailed,
	}
	p := NewPipeline(contract, &fakePinner{fileCID: "QmI", jsonCID: "QmM"}, nil, nil, nil, nil)

	_, err := p.Mint(context.Background(), testRequest())
	if err == nil || Classify(err) != FailureTransaction {
		t.Fatalf("err = %v, classify = %v, want transaction", err, Classify(err))
	}
}

func TestPipelineValidatesRequest(t *testing.T) {
	p := NewPipeline(&fakeContract{}, &fakePinner{}, nil, nil, nil, nil)

	req := testRequest()
	req.Image = nil
	if _, err := p.Mint(context.Background(), req); !errors.Is(err, ErrNoImage) {
		t.Errorf("missing image: err = %v", err)
	}

	req = testRequest()
	req.Recipient = common.Address{}
	if _, err := p.Mint(context.Background(), req); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("missing recipient: err = %v", err)
	}
}
