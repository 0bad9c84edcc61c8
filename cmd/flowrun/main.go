// Command flowrun loads a serialized board, triggers a node and prints the
// resulting execution trace.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GitBrincie212/flow-like/internal/board"
	"github.com/GitBrincie212/flow-like/internal/catalog"
	"github.com/GitBrincie212/flow-like/internal/engine"
	"github.com/GitBrincie212/flow-like/internal/node"
	"github.com/GitBrincie212/flow-like/internal/trace"
	"github.com/GitBrincie212/flow-like/pkg/config"
	"github.com/GitBrincie212/flow-like/pkg/logger"
	"github.com/GitBrincie212/flow-like/pkg/metrics"
)

func main() {
	var (
		boardPath  = flag.String("board", "", "path to the serialized board (JSON)")
		nodeID     = flag.String("node", "", "id of the node to trigger")
		event      = flag.String("event", "", "trigger event to fire instead of a node id")
		configPath = flag.String("config", "", "path to the runtime config (YAML)")
		successors = flag.Bool("successors", true, "walk exec successors after the node")
	)
	flag.Parse()

	if *boardPath == "" || (*nodeID == "" && *event == "") {
		fmt.Fprintln(os.Stderr, "usage: flowrun -board board.json (-node <id> | -event <name>) [-config flow.yaml] [-successors=false]")
		os.Exit(2)
	}

	if err := run(*boardPath, *nodeID, *event, *configPath, *successors); err != nil {
		fmt.Fprintln(os.Stderr, "flowrun:", err)
		os.Exit(1)
	}
}

func run(boardPath, nodeID, event, configPath string, successors bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	data, err := os.ReadFile(boardPath)
	if err != nil {
		return fmt.Errorf("read board: %w", err)
	}

	registry := catalog.Default()
	resolved, err := board.Load(data, func(typeID string) (node.NodeLogic, error) {
		return registry.Resolve(typeID)
	})
	if err != nil {
		return err
	}

	opts := []engine.Option{engine.WithLogger(log)}

	em := metrics.Disabled()
	if cfg.Metrics {
		em = metrics.New(prometheus.DefaultRegisterer)
	}
	opts = append(opts, engine.WithMetrics(em))

	if cfg.TraceStreamAddr != "" {
		sink := trace.NewStreamSink(cfg.TraceBufferSize, log)
		defer sink.Close()
		opts = append(opts, engine.WithSink(sink))

		r := mux.NewRouter()
		r.HandleFunc("/trace", sink.ServeHTTP)
		if cfg.Metrics {
			r.Handle("/metrics", promhttp.Handler()).Methods("GET")
		}
		go func() {
			if err := http.ListenAndServe(cfg.TraceStreamAddr, r); err != nil {
				log.Error("trace stream server stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
		log.Info("trace stream listening", map[string]interface{}{"addr": cfg.TraceStreamAddr})
	}

	eng := engine.New(resolved, opts...)

	var traces []*trace.Trace
	var triggerErr error
	if event != "" {
		traces, triggerErr = eng.TriggerEvent(context.Background(), event, successors)
	} else {
		var tr *trace.Trace
		tr, triggerErr = eng.Trigger(context.Background(), nodeID, successors)
		if tr != nil {
			traces = append(traces, tr)
		}
	}

	for _, tr := range traces {
		encoded, err := json.MarshalIndent(tr, "", "  ")
		if err == nil {
			fmt.Println(string(encoded))
		}
	}
	return triggerErr
}
