// Command buddyalloc exercises the buddy region allocator: it builds an
// arena from command-line flags, runs a configurable allocate/free loop and
// prints per-order statistics before, between and after.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/cloudwego/buddyalloc/buddy"
)

var (
	maxOrderFlag = &cli.IntFlag{
		Name:    "max-order",
		Aliases: []string{"o"},
		Usage:   "number of order levels above the unit size (must be > 0)",
		Value:   4,
	}
	pageSizeFlag = &cli.Uint64Flag{
		Name:    "page-size",
		Aliases: []string{"p"},
		Usage:   "order-0 block size in bytes (must be a power of two)",
		Value:   4096,
	}
	startAddrFlag = &cli.Uint64Flag{
		Name:    "start-addr",
		Aliases: []string{"s"},
		Usage:   "base address of the managed range",
	}
	allocSizeFlag = &cli.Uint64Flag{
		Name:    "alloc-size",
		Aliases: []string{"a"},
		Usage:   "size of the first allocation round (doubles every round)",
		Value:   4096,
	}
	loopFlag = &cli.IntFlag{
		Name:    "loop",
		Aliases: []string{"l"},
		Usage:   "number of allocation rounds",
		Value:   1,
	}
	subLoopFlag = &cli.IntFlag{
		Name:    "sub-loop",
		Aliases: []string{"n"},
		Usage:   "allocations per round",
		Value:   1,
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log every allocation and free",
	}
)

func main() {
	app := &cli.App{
		Name:   "buddyalloc",
		Usage:  "exercise a buddy region allocator and report per-order statistics",
		Flags:  []cli.Flag{maxOrderFlag, pageSizeFlag, startAddrFlag, allocSizeFlag, loopFlag, subLoopFlag, verboseFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	maxOrder := ctx.Int(maxOrderFlag.Name)
	pageSize := ctx.Uint64(pageSizeFlag.Name)
	startAddr := ctx.Uint64(startAddrFlag.Name)
	allocSize := ctx.Uint64(allocSizeFlag.Name)
	loop := ctx.Int(loopFlag.Name)
	subLoop := ctx.Int(subLoopFlag.Name)

	// reject bad configuration before any arena exists
	if maxOrder <= 0 {
		return fmt.Errorf("invalid max-order %d: must be > 0", maxOrder)
	}
	if pageSize == 0 || pageSize&(pageSize-1) != 0 {
		return fmt.Errorf("invalid page-size %d: must be a power of two", pageSize)
	}
	if loop < 0 || subLoop < 0 {
		return fmt.Errorf("invalid loop settings: loop=%d sub-loop=%d", loop, subLoop)
	}
	if allocSize < pageSize {
		return fmt.Errorf("alloc-size %d is smaller than the page size %d", allocSize, pageSize)
	}

	level := slog.LevelInfo
	if ctx.Bool(verboseFlag.Name) {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	arena, err := buddy.New(buddy.Config{UnitSize: pageSize, MaxOrder: maxOrder, BaseAddr: startAddr})
	if err != nil {
		return err
	}

	log.Info("buddy allocator initialized",
		"max_order", maxOrder,
		"page_size", pageSize,
		"start_addr", fmt.Sprintf("%#x", startAddr))
	if err := buddy.WriteTable(os.Stdout, arena.Snapshot()); err != nil {
		return err
	}

	// allocation failures are logged, never fatal
	handles := make([]buddy.Handle, 0, loop*subLoop)
	for i := 0; i < loop; i++ {
		size := allocSize << i
		for j := 0; j < subLoop; j++ {
			h, err := arena.Alloc(size)
			if err != nil {
				log.Error("allocation failed", "round", i, "size", size, "err", err)
				continue
			}
			if addr, err := arena.Address(h); err == nil {
				log.Debug("allocated block", "size", size, "addr", fmt.Sprintf("%#x", addr))
			}
			handles = append(handles, h)
		}
	}
	if err := buddy.WriteTable(os.Stdout, arena.Snapshot()); err != nil {
		return err
	}
	log.Info("made allocations", "count", len(handles), "requested", loop*subLoop)

	for i := len(handles) - 1; i >= 0; i-- {
		if addr, err := arena.Address(handles[i]); err == nil {
			log.Debug("freeing block", "addr", fmt.Sprintf("%#x", addr))
		}
		if err := arena.Free(handles[i]); err != nil {
			log.Error("free failed", "err", err)
		}
	}
	if err := buddy.WriteTable(os.Stdout, arena.Snapshot()); err != nil {
		return err
	}
	return nil
}
