// Command overthere-client is a minimal ask/tell CLI for manually
// exercising a running node: it issues one request, prints the reply,
// and exits. Output formatting and argument parsing live only here, not
// in the wire protocol engine.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/chipsenkbeil/over-there-sub000/client"
	"github.com/chipsenkbeil/over-there-sub000/cmn/config"
	"github.com/chipsenkbeil/over-there-sub000/crypto"
	"github.com/chipsenkbeil/over-there-sub000/msg"
	"github.com/chipsenkbeil/over-there-sub000/transport"
)

var (
	addr    string
	keyHex  string
	kind    string
	proto   string
	encMode string
	rawArgs string
)

func init() {
	flag.StringVar(&addr, "addr", "127.0.0.1:0", "server address to connect to")
	flag.StringVar(&keyHex, "key", "", "hex-encoded pre-shared key (required)")
	flag.StringVar(&kind, "kind", msg.KindHeartbeatRequest, "request Kind to send, e.g. HeartbeatRequest")
	flag.StringVar(&proto, "proto", "udp", "transport: udp or tcp")
	flag.StringVar(&encMode, "enc", "nonce96", "encryption mode: none, nonce96, nonce128")
	flag.StringVar(&rawArgs, "args", "{}", "JSON-encoded request args")
}

func main() {
	flag.Parse()

	if keyHex == "" {
		fmt.Fprintln(os.Stderr, "overthere-client: -key is required")
		os.Exit(1)
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "overthere-client: -key: %v\n", err)
		os.Exit(1)
	}

	signer := crypto.NewHMACSigner(key)
	bicrypter, err := buildBicrypter(encMode, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "overthere-client: %v\n", err)
		os.Exit(1)
	}
	codec := transport.NewCodec(signer, signer, bicrypter)
	cfg := config.Default()

	var c *client.Client
	switch proto {
	case "tcp":
		c, err = client.DialTCP(addr, codec, cfg)
	default:
		c, err = client.DialUDP(addr, codec, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "overthere-client: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	args, ok := decodeArgs(kind, rawArgs)
	if !ok {
		fmt.Fprintf(os.Stderr, "overthere-client: unknown request kind %q\n", kind)
		os.Exit(1)
	}

	req, err := msg.NewRequest(kind, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "overthere-client: %v\n", err)
		os.Exit(1)
	}
	reply, err := c.AskMsg(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "overthere-client: %v\n", err)
		os.Exit(1)
	}

	var payload any
	_ = reply.DecodeArgs(&payload)
	out, _ := json.MarshalIndent(map[string]any{"kind": reply.Kind, "args": payload}, "", "  ")
	fmt.Println(string(out))
}

func buildBicrypter(mode string, key []byte) (crypto.Bicrypter, error) {
	switch mode {
	case "none":
		return crypto.NoneBicrypter{}, nil
	case "nonce128":
		return crypto.NewChaChaBicrypter(key, crypto.EncryptionNonce128)
	case "nonce96", "":
		return crypto.NewChaChaBicrypter(key, crypto.EncryptionNonce96)
	default:
		return nil, fmt.Errorf("unknown encryption mode %q", mode)
	}
}

// decodeArgs returns a fresh Args struct for kind with rawArgs JSON
// decoded into it. Only request kinds are accepted here; a CLI has no
// reason to let a caller construct a reply envelope.
func decodeArgs(kind, rawArgs string) (any, bool) {
	var target any
	switch kind {
	case msg.KindHeartbeatRequest:
		target = &msg.HeartbeatArgs{}
	case msg.KindVersionRequest:
		target = &msg.VersionArgs{}
	case msg.KindCapabilitiesRequest:
		target = &msg.CapabilitiesArgs{}
	case msg.KindCreateDirRequest:
		target = &msg.CreateDirArgs{}
	case msg.KindRenameDirRequest:
		target = &msg.RenameDirArgs{}
	case msg.KindRemoveDirRequest:
		target = &msg.RemoveDirArgs{}
	case msg.KindListDirContentsRequest:
		target = &msg.ListDirContentsArgs{}
	case msg.KindOpenFileRequest:
		target = &msg.OpenFileArgs{}
	case msg.KindCloseFileRequest:
		target = &msg.CloseFileArgs{}
	case msg.KindRenameUnopenedFileRequest:
		target = &msg.RenameUnopenedFileArgs{}
	case msg.KindRenameFileRequest:
		target = &msg.RenameFileArgs{}
	case msg.KindRemoveUnopenedFileRequest:
		target = &msg.RemoveUnopenedFileArgs{}
	case msg.KindRemoveFileRequest:
		target = &msg.RemoveFileArgs{}
	case msg.KindReadFileRequest:
		target = &msg.ReadFileArgs{}
	case msg.KindWriteFileRequest:
		target = &msg.WriteFileArgs{}
	case msg.KindExecProcRequest:
		target = &msg.ExecProcArgs{}
	case msg.KindWriteProcStdinRequest:
		target = &msg.WriteProcStdinArgs{}
	case msg.KindReadProcStdoutRequest:
		target = &msg.ReadProcStdoutArgs{}
	case msg.KindReadProcStderrRequest:
		target = &msg.ReadProcStderrArgs{}
	case msg.KindKillProcRequest:
		target = &msg.KillProcArgs{}
	case msg.KindReadProcStatusRequest:
		target = &msg.ReadProcStatusArgs{}
	case msg.KindCustomRequest:
		target = &msg.CustomArgs{}
	case msg.KindInternalDebugRequest:
		target = &msg.InternalDebugArgs{}
	default:
		return nil, false
	}
	if err := json.Unmarshal([]byte(rawArgs), target); err != nil {
		return nil, false
	}
	return target, true
}
