package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/zeromicro/go-zero/core/logx"

	"perpsdk/internal/cli"
	"perpsdk/internal/config"
	"perpsdk/pkg/ordertx"
	"perpsdk/pkg/simulation"
	"perpsdk/pkg/txerrors"
)

type result struct {
	To     common.Address `json:"to"`
	Value  *hexutil.Big   `json:"value"`
	Data   hexutil.Bytes  `json:"data"`
	Digest common.Hash    `json:"digest"`
	Calls  []string       `json:"calls"`
}

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}

func main() {
	var (
		configPath = flag.String("f", "etc/perpsdk.yaml", "path to perpsdk configuration")
		batchPath  = flag.String("batch", "-", "path to the order batch JSON, - for stdin")
		simulate   = flag.Bool("simulate", false, "dry-run the batch against the configured node")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logx.MustSetup(cfg.Log)
	logx.DisableStat()
	cli.LogConfigSummary(cfg)

	network, err := cfg.ChainNetwork()
	if err != nil {
		fatalf("resolve network: %v", err)
	}
	contracts := network.Contracts()

	batch, err := readBatch(*batchPath)
	if err != nil {
		fatalf("%v", err)
	}
	params, err := buildBatch(batch, cfg.Orders, contracts)
	if err != nil {
		fatalf("build batch: %v", err)
	}
	payload := ordertx.BuildBatchOrderMulticallPayload(params, contracts)

	out, err := encodeResult(payload, contracts.ExchangeRouter)
	if err != nil {
		fatalf("encode batch: %v", err)
	}

	if *simulate {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := simulateBatch(ctx, cfg, batch, payload); err != nil {
			fatalf("simulate: %s (%v)", txerrors.Describe(err), err)
		}
		logx.Info("simulation passed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fatalf("write result: %v", err)
	}
}

func encodeResult(payload ordertx.MulticallPayload, router common.Address) (*result, error) {
	data, err := ordertx.EncodeMulticall(payload)
	if err != nil {
		return nil, err
	}
	digest, err := ordertx.Digest(payload)
	if err != nil {
		return nil, err
	}
	calls := make([]string, 0, len(payload.Calls))
	for _, call := range payload.Calls {
		calls = append(calls, call.Method)
	}
	return &result{
		To:     router,
		Value:  (*hexutil.Big)(payload.Value),
		Data:   data,
		Digest: digest,
		Calls:  calls,
	}, nil
}

func simulateBatch(ctx context.Context, cfg *config.Config, batch *batchFile, payload ordertx.MulticallPayload) error {
	network, err := cfg.ChainNetwork()
	if err != nil {
		return err
	}
	client, err := network.Dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	sim := simulation.NewSimulator(client, network.Contracts().ExchangeRouter,
		simulation.WithRetryPolicy(simulation.RetryPolicy{
			MaxRetries: network.Simulation.Retries(),
			Delay:      network.Simulation.RetryDelay,
		}),
	)
	return sim.SimulateExecuteOrder(ctx, payload, simulation.Options{
		From:           batch.Account,
		PriceOverrides: batch.Prices,
	})
}
