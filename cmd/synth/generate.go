package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/synth/internal/config"
	"github.com/alfredjeanlab/synth/internal/driver"
	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/events"
	"github.com/alfredjeanlab/synth/internal/namespace"
	"github.com/alfredjeanlab/synth/internal/resolve"
	"github.com/alfredjeanlab/synth/internal/sink"
	"github.com/alfredjeanlab/synth/internal/ui"
)

// defaultSeed is the fixed determinism constant spec.md §6 requires.
const defaultSeed uint64 = 1

var generateCmd = &cobra.Command{
	Use:   "generate <namespace-path>",
	Short: "Generate records for every collection in a namespace",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().Int("size", 0, "global record count, split evenly across collections")
	generateCmd.Flags().String("to", "", "destination URI (defaults to stdout, or the profile's destination)")
	generateCmd.Flags().Uint64("seed", 0, "deterministic PRNG seed (default 1, or the profile's seed)")
	generateCmd.Flags().Bool("random", false, "seed from OS entropy instead of a fixed/profile seed")
	generateCmd.Flags().StringArrayP("collection", "c", nil, "per-collection size override (name=N, repeatable)")
	generateCmd.Flags().String("profile", "", "named profile from profiles.toml supplying defaults")
	generateCmd.Flags().String("events", "", "NATS URL to publish run-progress events to (optional)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := args[0]

	profile, err := loadProfile(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fsys := os.DirFS(path)
	ns, err := namespace.Load(fsys)
	if err != nil {
		return err
	}

	plan, err := buildPlan(cmd, ns.Names, profile)
	if err != nil {
		return err
	}

	// Dependency ordering and the unique-node feasibility check run before
	// the destination is opened, so a configuration error never touches it.
	if _, err := resolve.Order(ns); err != nil {
		return err
	}
	if err := resolve.CheckFeasibility(ns, plan.Sizes); err != nil {
		return err
	}

	seed, err := resolveSeed(cmd, profile)
	if err != nil {
		return err
	}

	dest, _ := cmd.Flags().GetString("to")
	if dest == "" {
		dest = profile.Destination
	}

	s, err := sink.Open(ctx, dest)
	if err != nil {
		return err
	}
	defer s.Close()

	pub, err := openPublisher(cmd)
	if err != nil {
		return err
	}
	defer pub.Close()

	if err := driver.RunWithEvents(ctx, ns, plan, seed, s, pub); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderAccent(fmt.Sprintf("generated %d collection(s)", len(ns.Names))))
	return nil
}

func openPublisher(cmd *cobra.Command) (events.Publisher, error) {
	url, _ := cmd.Flags().GetString("events")
	if url == "" {
		return &events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(url)
	if err != nil {
		return nil, errkit.Configuration("", "connecting event publisher: %v", err)
	}
	return pub, nil
}

func loadProfile(cmd *cobra.Command) (config.Profile, error) {
	name, _ := cmd.Flags().GetString("profile")
	if name == "" {
		return config.Profile{}, nil
	}

	path, err := config.DefaultPath()
	if err != nil {
		return config.Profile{}, errkit.Configuration("", "resolving profiles path: %v", err)
	}
	file, err := config.Load(path)
	if err != nil {
		return config.Profile{}, errkit.Configuration("", "loading profiles: %v", err)
	}
	profile, ok := file.Profile(name)
	if !ok {
		return config.Profile{}, errkit.Configuration("", "profile %q not found in %s", name, path)
	}
	return profile, nil
}

// buildPlan merges --size (or the profile default), --collection overrides,
// and the profile's own Sizes map into a driver.Plan. The profile's
// per-collection Sizes replace the even split of the global size, and
// --collection overrides replace both.
func buildPlan(cmd *cobra.Command, names []string, profile config.Profile) (driver.Plan, error) {
	size, _ := cmd.Flags().GetInt("size")
	if size == 0 {
		size = profile.DefaultSize
	}

	plan := driver.Distribute(names, size)
	for name, n := range profile.Sizes {
		plan.Sizes[name] = n
	}
	plan.Default = size / max(len(names), 1)

	overrides, _ := cmd.Flags().GetStringArray("collection")
	for _, pair := range overrides {
		name, n, err := parseCollectionSize(pair)
		if err != nil {
			return driver.Plan{}, err
		}
		plan.Sizes[name] = n
	}
	return plan, nil
}

func parseCollectionSize(pair string) (string, int, error) {
	name, raw, ok := strings.Cut(pair, "=")
	if !ok {
		return "", 0, errkit.Configuration("", "invalid --collection %q: expected name=N", pair)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, errkit.Configuration("", "invalid --collection %q: %v", pair, err)
	}
	return name, n, nil
}

func resolveSeed(cmd *cobra.Command, profile config.Profile) (uint64, error) {
	if random, _ := cmd.Flags().GetBool("random"); random {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, errkit.Configuration("", "reading random seed: %v", err)
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		return seed, nil
	}
	if profile.Seed != nil {
		return *profile.Seed, nil
	}
	return defaultSeed, nil
}
