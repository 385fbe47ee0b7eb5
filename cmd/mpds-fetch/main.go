// Command mpds-fetch retrieves data from the MPDS platform and writes
// it as CSV, raw JSON, or a bare hit count.
//
// Usage:
//
//	MPDS_KEY=... mpds-fetch -q '{"elements": "Ti-O", "classes": "binary"}'
//	MPDS_KEY=... mpds-fetch -q '{"props": "band gap"}' -phases 1,2,3 -count
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tilde-lab/mpds-client-go/pkg/cache"
	"github.com/tilde-lab/mpds-client-go/pkg/client"
	"github.com/tilde-lab/mpds-client-go/pkg/export"
	"github.com/tilde-lab/mpds-client-go/pkg/logging"
	"github.com/tilde-lab/mpds-client-go/pkg/projection"
	"github.com/tilde-lab/mpds-client-go/pkg/ratelimit"
)

func main() {
	var (
		queryJSON = flag.String("q", "", "search query as JSON, e.g. '{\"elements\": \"Ti-O\"}'")
		phasesCSV = flag.String("phases", "", "comma-separated phase ids to restrict the query to")
		countOnly = flag.Bool("count", false, "print the hit count instead of retrieving data")
		rawOut    = flag.Bool("raw", false, "dump raw JSON records to stdout instead of CSV")
		dir       = flag.String("dir", export.DefaultDir, "CSV export directory")
		delay     = flag.Duration("delay", ratelimit.DefaultDelay, "courtesy pause after every page request")
		debug     = flag.Bool("debug", false, "log every outgoing request")
	)
	flag.Parse()

	level := logging.LevelInfo
	if *debug {
		level = logging.LevelDebug
	}
	logging.Setup(logging.Config{Level: level, Pretty: true})

	if *queryJSON == "" {
		flag.Usage()
		os.Exit(2)
	}

	var query client.Query
	if err := json.Unmarshal([]byte(*queryJSON), &query); err != nil {
		log.Fatalf("Invalid -q query: %v", err)
	}

	phaseIDs, err := parsePhases(*phasesCSV)
	if err != nil {
		log.Fatalf("Invalid -phases list: %v", err)
	}

	cfg := client.DefaultConfig()
	cfg.Delay = *delay
	cfg.Debug = *debug

	// Optional Redis page cache
	if redisURL := getEnv("MPDS_REDIS_URL", ""); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", redisURL, err)
		}
		cfg.Cache = cache.NewManager(redisClient, cache.DefaultTTL)
	}

	mpdsClient, err := client.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create MPDS client: %v", err)
	}

	exporter := export.New(*dir)
	if err := run(context.Background(), mpdsClient, exporter, query, phaseIDs, *countOnly, *rawOut, os.Stdout); err != nil {
		log.Fatalf("Retrieval failed: %v", err)
	}
}

// run executes one retrieval in the selected mode and writes the
// result (count, raw JSON, or CSV path) to w.
func run(ctx context.Context, c *client.Client, exporter *export.Exporter, query client.Query, phaseIDs []int, countOnly, rawOut bool, w io.Writer) error {
	if countOnly {
		count, err := c.CountData(ctx, query, phaseIDs)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, count)
		return nil
	}

	if rawOut {
		records, err := c.GetRaw(ctx, query, phaseIDs)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		for _, record := range records {
			if err := enc.Encode(record); err != nil {
				return err
			}
		}
		return nil
	}

	rows, err := c.GetData(ctx, query, phaseIDs, nil)
	if err != nil {
		return err
	}

	path, err := exporter.SaveCSV(rows, projection.DefaultTitles)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, path)
	return nil
}

// parsePhases parses a comma-separated phase id list; empty means no
// phase restriction.
func parsePhases(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("phase id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
