package main

import (
	"os"
	"strings"

	"hotel/config"
	"hotel/helper"
	"hotel/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

var actions = []string{helper.ActionUp, helper.ActionDown, helper.ActionDrop, helper.ActionStepUp}

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down) is required")
	}

	cfg := config.Get()

	logger.SetLogLevel(cfg)

	if err := helper.Runner(cfg, os.Args[1]); err != nil {
		log.Fatal().Err(err).Str("valid", strings.Join(actions, ", ")).Msg("Migration failed")
	}
}
