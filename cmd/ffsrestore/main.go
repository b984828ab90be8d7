package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-ffs/ffs/area"
	"github.com/go-ffs/ffs/flashdev"
	"github.com/go-ffs/ffs/mlog"
	"github.com/go-ffs/ffs/restore"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n\n%s [flags] AREAFILE...\n", os.Args[0])
		flag.PrintDefaults()
	}
	inodeCapacity := flag.Int("inode-capacity", 0, "Maximum live inodes (0 = unbounded)")
	blockCapacity := flag.Int("block-capacity", 0, "Maximum live blocks (0 = unbounded)")
	metricsAddr := flag.String("metrics-address", "", "If set, serve Prometheus metrics on this address instead of exiting after mount")

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	var registry *prometheus.Registry
	var registerer prometheus.Registerer
	if *metricsAddr != "" {
		registry = prometheus.NewRegistry()
		registerer = registry
	}
	metrics := restore.NewMetrics(registerer)

	var descs []area.Desc
	for _, path := range flag.Args() {
		f, err := flashdev.OpenFile(path)
		if err != nil {
			log.Fatalf("ffsrestore: open %s: %v", path, err)
		}
		descs = append(descs, area.Desc{Device: f, Offset: 0, Length: f.Size()})
	}

	res, err := restore.Mount(context.Background(), descs, restore.Options{
		InodeCapacity: *inodeCapacity,
		BlockCapacity: *blockCapacity,
		Metrics:       metrics,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ffsrestore: mount failed: %v\n", err)
		os.Exit(1)
	}

	printSummary(res, descs)

	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		mlog.Printf2("cmd/ffsrestore", "serving metrics"+mlog.Fields("address", *metricsAddr))
		log.Fatal(http.ListenAndServe(*metricsAddr, nil))
	}
}

func printSummary(res *restore.Result, descs []area.Desc) {
	var totalBytes int64
	for _, d := range descs {
		totalBytes += d.Length
	}
	fmt.Printf("areas:            %d (%s)\n", len(descs), humanize.Bytes(uint64(totalBytes)))
	fmt.Printf("scratch area:     %d\n", res.FS.ScratchAreaIdx)
	fmt.Printf("inodes restored:  %d\n", res.FS.Inodes.Len())
	fmt.Printf("blocks restored:  %d\n", res.FS.Blocks.Len())
	fmt.Printf("max block size:   %s\n", humanize.Bytes(uint64(res.MaxBlockPayload)))
	if res.FS.Root != nil {
		fmt.Printf("root children:    %d\n", len(res.FS.Root.Children))
	}
}
