package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/tauraamui/mapinterp/pkg/config"
	"github.com/tauraamui/mapinterp/pkg/configdef"
	"github.com/tauraamui/mapinterp/pkg/database"
	"github.com/tauraamui/mapinterp/pkg/log"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the default config file and run history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Setting up mapinterp...")

		err := config.DefaultCreateResolver().Create()
		if err != nil {
			if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
				return err
			}
			log.Warn(err.Error())
		}

		err = database.Setup()
		if err != nil {
			if !errors.Is(err, database.ErrDBAlreadyExists) {
				return err
			}
			log.Warn(err.Error())
		}

		log.Info("Setup successful...")
		return nil
	},
}
