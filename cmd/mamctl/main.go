// Command mamctl is a development publisher and reader for MAM channels.
//
// It talks to a tangle node directly through the channel controller with
// the stub codec, so it is suitable for exercising channels end to end but
// not for publishing sensitive content.
//
// # Usage
//
//	mamctl seed
//	mamctl publish --node=<uri> --seed=<seed> --msg=<trytes> [--mode=public] [--index=0] [--start=0] [--count=1]
//	mamctl fetch --node=<uri> --root=<root> [--mode=public] [--side-key=...]
//
// mamctl is stateless: publish prints the advanced cursor, and the caller
// passes it back on the next invocation so no one-time leaf is reused.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/tanglekit/mamgo/cmd/common"
	"github.com/tanglekit/mamgo/ledger"
	"github.com/tanglekit/mamgo/mam"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "seed":
		err = runSeed()
	case "publish":
		err = runPublish(os.Args[2:])
	case "fetch":
		err = runFetch(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mamctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mamctl <seed|publish|fetch> [flags]")
}

func runSeed() error {
	seed, err := mam.GenerateSeed()
	if err != nil {
		return err
	}
	fmt.Println(seed)
	return nil
}

func newController(nodeURI string, debug bool) (*mam.Controller, error) {
	client, err := ledger.NewIotaClient(nodeURI)
	if err != nil {
		return nil, err
	}
	return mam.NewController(mam.ControllerConfig{
		Codec:  mam.NewStubCodec(),
		Ledger: client,
		Log:    common.NewLogger(debug),
	})
}

func runPublish(args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	var (
		nodeURI = fs.String("node", "", "Tangle node URI")
		seedStr = fs.String("seed", "", "Channel seed (generated when empty)")
		message = fs.String("msg", "", "Message trytes to publish")
		modeStr = fs.String("mode", "public", "Channel mode")
		sideKey = fs.String("side-key", "", "Side key for restricted channels")
		start   = fs.Uint64("start", 0, "First leaf of the active subtree")
		count   = fs.Uint64("count", 1, "Leaves in the active subtree")
		index   = fs.Uint64("index", 0, "Next unused leaf index")
		depth   = fs.Uint64("depth", 0, "Tip selection depth (0 = default)")
		mwm     = fs.Uint64("mwm", 0, "Min weight magnitude (0 = default)")
		debug   = fs.Bool("debug", false, "Enable debug logging")
	)
	fs.Parse(args)

	if *nodeURI == "" {
		return fmt.Errorf("--node is required")
	}
	seed, err := common.LoadOrGenerateSeed(*seedStr)
	if err != nil {
		return err
	}
	mode, err := mam.ParseMode(*modeStr)
	if err != nil {
		return err
	}

	state := mam.NewChannelState(seed, consts.SecurityLevelMedium)
	state.Start = *start
	state.Count = *count
	state.Index = *index
	state, err = state.WithMode(mode, trinary.Trytes(*sideKey))
	if err != nil {
		return err
	}

	ctrl, err := newController(*nodeURI, *debug)
	if err != nil {
		return err
	}

	result, err := ctrl.Create(state, trinary.Trytes(*message))
	if err != nil {
		return err
	}
	if err := ctrl.Attach(context.Background(), result.Payload, result.Address, *depth, *mwm); err != nil {
		return err
	}

	fmt.Printf("seed:     %s\n", seed)
	fmt.Printf("root:     %s\n", result.Root)
	fmt.Printf("address:  %s\n", result.Address)
	fmt.Printf("nextRoot: %s\n", result.State.NextRoot)
	fmt.Printf("cursor:   --start=%d --count=%d --index=%d\n",
		result.State.Start, result.State.Count, result.State.Index)
	return nil
}

func runFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var (
		nodeURI = fs.String("node", "", "Tangle node URI")
		rootStr = fs.String("root", "", "Chain head to fetch from")
		modeStr = fs.String("mode", "public", "Channel mode")
		sideKey = fs.String("side-key", "", "Side key for restricted channels")
		debug   = fs.Bool("debug", false, "Enable debug logging")
	)
	fs.Parse(args)

	if *nodeURI == "" || *rootStr == "" {
		return fmt.Errorf("--node and --root are required")
	}
	mode, err := mam.ParseMode(*modeStr)
	if err != nil {
		return err
	}

	ctrl, err := newController(*nodeURI, *debug)
	if err != nil {
		return err
	}

	result, err := ctrl.Fetch(context.Background(), trinary.Hash(*rootStr), mode, trinary.Trytes(*sideKey), func(msg trinary.Trytes) {
		fmt.Println(msg)
	})
	if result != nil {
		fmt.Printf("lastRoot: %s\n", result.LastRoot)
	}
	return err
}
