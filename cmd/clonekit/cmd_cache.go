package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"clonekit/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheRaw bool

var errNoEntry = errors.New("no such entry")

// cacheCmd groups the key/value cache commands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Persistent key/value cache (cache.driver, cache.path)",
}

var cacheSetCmd = &cobra.Command{
	Use:   "set NAME VALUE",
	Short: "Store VALUE under NAME",
	Long: `Stores VALUE under NAME. VALUE is parsed as JSON when it is valid JSON and
stored as a JSON string otherwise. With --raw, VALUE is stored verbatim.`,
	Args: cobra.ExactArgs(2),
	RunE: cacheSet,
}

var cacheGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print the entry stored under NAME",
	Args:  cobra.ExactArgs(1),
	RunE:  cacheGet,
}

var cacheRemoveCmd = &cobra.Command{
	Use:     "rm NAME",
	Aliases: []string{"remove"},
	Short:   "Remove the entry stored under NAME",
	Args:    cobra.ExactArgs(1),
	RunE:    cacheRemove,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry",
	Args:  cobra.NoArgs,
	RunE:  cacheClear,
}

var cacheKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List entry names",
	Args:  cobra.NoArgs,
	RunE:  cacheKeys,
}

// cmdContext returns the command's context, or Background when the command
// was not started through Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func openCache() (*store.Cache, error) {
	c, err := store.Open(cfg.Cache.Driver, cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	logger.Debug("cache opened", zap.String("driver", c.Driver()), zap.String("path", c.Path()))
	return c, nil
}

func cacheSet(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	name, raw := args[0], args[1]
	if cacheRaw {
		return c.Set(cmdContext(cmd), name, raw, true)
	}
	var data any = raw
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		data = parsed
	}
	return c.Set(cmdContext(cmd), name, data, false)
}

func cacheGet(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	text, ok, err := c.Get(cmdContext(cmd), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", args[0], errNoEntry)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func cacheRemove(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Remove(cmdContext(cmd), args[0])
}

func cacheClear(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Clear(cmdContext(cmd))
}

func cacheKeys(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	keys, err := c.Keys(cmdContext(cmd))
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	return nil
}
