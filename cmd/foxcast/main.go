package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/norasector/foxcast/pkg/station"
	"github.com/norasector/foxcast/pkg/station/config"
	"github.com/norasector/foxcast/pkg/station/output"
	"github.com/norasector/foxcast/pkg/util"
	"github.com/norasector/foxcast/pkg/viz"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)
	configFile := flag.String("config", "foxcast.yaml", "YAML config file")

	flag.Parse()

	opts, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", opts.LogLevel).Msg("invalid log level")
	}
	log.Logger = log.Logger.Level(level)

	var writeAPI api.WriteAPI = &util.MockWriteAPI{}
	if opts.InfluxDB.Host != "" {
		client := influxdb2.NewClient(opts.InfluxDB.Host, "")
		defer client.Close()
		writeAPI = client.WriteAPI(opts.InfluxDB.Organization, opts.InfluxDB.Bucket)
	}

	var outputs []station.BitOutput
	if opts.FileOutput.Path != "" {
		f, err := os.Create(opts.FileOutput.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.FileOutput.Path).Msg("failed to create output file")
		}
		defer f.Close()
		outputs = append(outputs, output.NewWriterOutput(f, opts.FileOutput.Packed))
	}
	if len(opts.OutputDestinations) > 0 {
		outputs = append(outputs, output.NewFrameUDPOutput(opts.OutputDestinations, writeAPI, log.Logger))
	}
	if len(outputs) == 0 {
		log.Warn().Msg("no outputs configured, frames are only counted")
	}

	stationOpts := []station.StationOption{
		station.WithInfluxDB(writeAPI),
		station.WithLogger(log.Logger),
	}
	if opts.StatusServer.Port > 0 {
		stationOpts = append(stationOpts, station.WithStatusServer(viz.NewServer(opts.StatusServer.Port, opts.StatusServer.UpdateInterval)))
	}

	st, err := station.NewStation(station.Options{
		StationName:    opts.StationName,
		StartALFN:      *opts.StartALFN,
		StrictAlphabet: opts.StrictAlphabet,
		FrameInterval:  opts.FrameInterval,
		Outputs:        outputs,
		Loopback:       opts.Loopback,
	}, stationOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create station")
	}

	eg, ctx := errgroup.WithContext(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	eg.Go(func() error {
		select {
		case <-sigChan:
		case <-ctx.Done():
		}

		return st.Stop()
	})

	eg.Go(func() error {
		return st.Start(ctx)
	})

	if err := eg.Wait(); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("exited program")
	}
}
