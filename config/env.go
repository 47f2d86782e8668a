package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Deployment knobs. Defaults match the production deployment; test
// deployments override them from the environment (notably SECONDS_IN_UNIT=60).
var (
	// Length of one accrual time unit in seconds. 86400 in production,
	// 60 in test deployments. Never hard-code either value outside this file.
	UNIT_SECONDS uint64 = 86400

	// Immediate reward to the direct referrer, percent of the purchase.
	DIRECT_REWARD_PERCENT uint64 = 25

	// Pool for the layered reward, percent of the purchase, split across
	// MAX_REWARD_LAYERS layers.
	LEVEL_REWARD_PERCENT uint64 = 15

	// Redemption fee, percent of the fee base (max ticket amount).
	REDEMPTION_FEE_PERCENT uint64 = 1

	// Required stake size in permille of the ticket amount. Observed 1500
	// or 1600 depending on deployment generation.
	STAKE_MULTIPLIER_PERMILLE uint64 = 1500

	// Address (text form) allowed to call privileged operations: credit,
	// set_reserves. Empty disables them entirely.
	ADMIN_ADDRESS = ""

	STAKING_ENABLED = true
	SWAP_ENABLED    = true
)

// Load reads the env file (if present) and the process environment and
// applies the deployment knobs. Call once at startup, before opening the
// ledger.
func Load(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// default .env is optional
		godotenv.Load()
	}

	if err := loadUint("SECONDS_IN_UNIT", &UNIT_SECONDS); err != nil {
		return err
	}
	if err := loadUint("DIRECT_REWARD_PERCENT", &DIRECT_REWARD_PERCENT); err != nil {
		return err
	}
	if err := loadUint("LEVEL_REWARD_PERCENT", &LEVEL_REWARD_PERCENT); err != nil {
		return err
	}
	if err := loadUint("REDEMPTION_FEE_PERCENT", &REDEMPTION_FEE_PERCENT); err != nil {
		return err
	}
	if err := loadUint("STAKE_MULTIPLIER_PERMILLE", &STAKE_MULTIPLIER_PERMILLE); err != nil {
		return err
	}
	if v := os.Getenv("ADMIN_ADDRESS"); v != "" {
		ADMIN_ADDRESS = v
	}
	if err := loadBool("STAKING_ENABLED", &STAKING_ENABLED); err != nil {
		return err
	}
	if err := loadBool("SWAP_ENABLED", &SWAP_ENABLED); err != nil {
		return err
	}

	if UNIT_SECONDS == 0 {
		return fmt.Errorf("SECONDS_IN_UNIT must not be zero")
	}
	if DIRECT_REWARD_PERCENT > 100 || LEVEL_REWARD_PERCENT > 100 || REDEMPTION_FEE_PERCENT > 100 {
		return fmt.Errorf("reward percents must not exceed 100")
	}

	return nil
}

func loadUint(name string, dst *uint64) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, v, err)
	}
	*dst = n
	return nil
}

func loadBool(name string, dst *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, v, err)
	}
	*dst = b
	return nil
}
