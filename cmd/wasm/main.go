//go:build js && wasm

package main

import (
	"encoding/hex"
	"fmt"
	"syscall/js"

	"github.com/pakekit/jpake/pkg/jpake"
)

// Global map of active three-pass exchanges, keyed by a caller-chosen
// session handle. Wire messages cross the JS boundary hex-encoded.
var exchanges = make(map[string]*jpake.ThreePass)

func main() {
	c := make(chan struct{}, 0)

	fmt.Println("Go jpake WASM Initialized")

	js.Global().Set("GoJPAKE", map[string]interface{}{
		"DeriveS":      js.FuncOf(DeriveS),
		"NewExchange":  js.FuncOf(NewExchange),
		"Pass1":        js.FuncOf(Pass1),
		"Pass2":        js.FuncOf(Pass2),
		"Pass3":        js.FuncOf(Pass3),
		"ReceivePass3": js.FuncOf(ReceivePass3),
		"SharedKey":    js.FuncOf(SharedKey),
	})

	<-c
}

// DeriveS maps a password to its hex-encoded scalar representation.
// Arguments: password.
func DeriveS(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (password)"
	}
	s, err := jpake.DeriveS(args[0].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return hex.EncodeToString(s)
}

// NewExchange creates a three-pass exchange.
// Arguments: session handle, user id.
func NewExchange(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (handle, userID)"
	}
	handle := args[0].String()
	if _, exists := exchanges[handle]; exists {
		return "error: handle already in use"
	}
	tp, err := jpake.NewThreePass(args[1].String(), nil)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	exchanges[handle] = tp
	return handle
}

// Pass1 emits the initiator's first message.
// Arguments: session handle. Returns hex.
func Pass1(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (handle)"
	}
	tp, ok := exchanges[args[0].String()]
	if !ok {
		return "error: unknown handle"
	}
	r1, err := tp.Pass1()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return hex.EncodeToString(r1.Bytes())
}

// Pass2 runs the responder's side of passes 1 and 2.
// Arguments: session handle, pass1 hex, s hex, peer user id. Returns hex.
func Pass2(this js.Value, args []js.Value) interface{} {
	if len(args) != 4 {
		return "error: expected 4 arguments (handle, pass1, s, peerUserID)"
	}
	tp, ok := exchanges[args[0].String()]
	if !ok {
		return "error: unknown handle"
	}
	pass1, err := decodeRound1(args[1].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	s, err := hex.DecodeString(args[2].String())
	if err != nil {
		return fmt.Sprintf("error: invalid s: %v", err)
	}
	pass2, err := tp.Pass2(pass1, s, args[3].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return hex.EncodeToString(pass2.Bytes())
}

// Pass3 runs the initiator's side of pass 3.
// Arguments: session handle, pass2 hex, s hex, peer user id. Returns hex.
func Pass3(this js.Value, args []js.Value) interface{} {
	if len(args) != 4 {
		return "error: expected 4 arguments (handle, pass2, s, peerUserID)"
	}
	tp, ok := exchanges[args[0].String()]
	if !ok {
		return "error: unknown handle"
	}
	raw, err := hex.DecodeString(args[1].String())
	if err != nil {
		return fmt.Sprintf("error: invalid pass2: %v", err)
	}
	pass2, err := jpake.ParsePass2Result(raw)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	s, err := hex.DecodeString(args[2].String())
	if err != nil {
		return fmt.Sprintf("error: invalid s: %v", err)
	}
	pass3, err := tp.Pass3(pass2, s, args[3].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return hex.EncodeToString(pass3.Bytes())
}

// ReceivePass3 completes the responder's view of the exchange.
// Arguments: session handle, pass3 hex.
func ReceivePass3(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (handle, pass3)"
	}
	tp, ok := exchanges[args[0].String()]
	if !ok {
		return "error: unknown handle"
	}
	raw, err := hex.DecodeString(args[1].String())
	if err != nil {
		return fmt.Sprintf("error: invalid pass3: %v", err)
	}
	pass3, err := jpake.ParseRound2Result(raw)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if err := tp.ReceivePass3(pass3); err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}

// SharedKey derives and returns the hex-encoded 32-byte key, then drops
// the exchange from the session map.
// Arguments: session handle.
func SharedKey(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (handle)"
	}
	handle := args[0].String()
	tp, ok := exchanges[handle]
	if !ok {
		return "error: unknown handle"
	}
	key, err := tp.DeriveSharedKey()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	delete(exchanges, handle)
	return hex.EncodeToString(key)
}

func decodeRound1(s string) (*jpake.Round1Result, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return jpake.ParseRound1Result(raw)
}
