package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strandlabs/strand/channel"
	"github.com/strandlabs/strand/handle"
	"github.com/strandlabs/strand/sched"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted handle lifecycle scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		return runDemo(cfg, log)
	},
}

func runDemo(cfg config, log *zap.Logger) error {
	rt := sched.New(sched.WithLogger(log.Named("sched")))
	table := handle.New(rt,
		handle.WithLimit(cfg.TableLimit),
		handle.WithLogger(log.Named("handle")),
	)

	h, err := channel.New(table, rt, cfg.ChannelCap)
	if err != nil {
		return err
	}
	dup, err := table.Dup(h)
	if err != nil {
		return err
	}
	log.Info("channel allocated",
		zap.Int("handle", int(h)),
		zap.Int("dup", int(dup)),
		zap.Int("capacity", cfg.ChannelCap))

	ptr, err := table.Query(h, channel.Type)
	if err != nil {
		return err
	}
	ch := ptr.(*channel.Channel)

	const messages = 16
	rt.Go(func() {
		for i := 0; i < messages; i++ {
			if err := ch.Send(i); err != nil {
				log.Error("send failed", zap.Error(err))
				return
			}
		}
		if err := table.Close(h); err != nil {
			log.Error("close failed", zap.Error(err))
		}
		log.Info("producer finished", zap.Int("sent", messages))
	})
	rt.Go(func() {
		for i := 0; i < messages; i++ {
			v, err := ch.Recv()
			if err != nil {
				log.Error("recv failed", zap.Error(err))
				return
			}
			log.Debug("received", zap.Any("value", v))
		}
		if err := table.Close(dup); err != nil {
			log.Error("close failed", zap.Error(err))
		}
		log.Info("consumer finished", zap.Int("received", messages))
	})

	if err := rt.Run(); err != nil {
		return err
	}

	fmt.Printf("handles in use: %d (capacity %d)\n", table.Len(), table.Cap())
	return nil
}
