package main

import (
	"bufio"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binpm/resolver/pkg/resolve"
	"github.com/binpm/resolver/pkg/resolve/engine"
	"github.com/binpm/resolver/pkg/universe"
	"github.com/binpm/resolver/pkg/versioncmp"
)

func newSolveCommand() *cobra.Command {
	var (
		conservative   bool
		force          bool
		forceVital     bool
		ignoreCompat32 bool
		strictRequire  bool
		jobTypeFlag    string
		scheme         string
		assumeYes      bool
	)

	cmd := &cobra.Command{
		Use:   "solve <universe.yaml>",
		Short: "Resolve a universe fixture into a job plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uni, reqs, err := loadUniverseFile(args[0])
			if err != nil {
				return err
			}

			jobType, err := parseJobType(jobTypeFlag)
			if err != nil {
				return err
			}
			sch, err := parseScheme(scheme)
			if err != nil {
				return err
			}

			cfg := universe.Config{
				ConservativeUpgrade: conservative,
				ForceCanRemoveVital: forceVital,
				Force:               force,
				IgnoreCompat32:      ignoreCompat32,
				StrictRequire:       strictRequire,
				JobType:             jobType,
				SelectCandidate:     versioncmp.DefaultSelectCandidate(sch),
				NeedUpgrade:         versioncmp.DefaultNeedUpgrade(sch),
				AskYesNo:            stdinAskYesNo(cmd, assumeYes),
			}

			problem, err := resolve.NewProblem(uni, reqs, cfg, engine.New(), log)
			if err != nil {
				return err
			}

			jobs, err := problem.Solve(context.Background(), cfg.AskYesNo)
			if err != nil {
				return err
			}

			for _, j := range jobs {
				printJob(cmd, j)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&conservative, "conservative-upgrade", false, "keep the local version when the remote is not strictly newer")
	cmd.Flags().BoolVar(&force, "force", false, "allow overriding vital-package protection together with --force-can-remove-vital")
	cmd.Flags().BoolVar(&forceVital, "force-can-remove-vital", false, "permit removing a vital package's UID (requires --force)")
	cmd.Flags().BoolVar(&ignoreCompat32, "ignore-compat32", false, "drop :32-suffixed shlib requirements")
	cmd.Flags().BoolVar(&strictRequire, "strict-require", false, "fail construction on a require clause with no provider instead of dropping it")
	cmd.Flags().StringVar(&jobTypeFlag, "job-type", "install", "install, upgrade, delete, or fetch")
	cmd.Flags().StringVar(&scheme, "version-scheme", "semver", "semver, deb, or pep440")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every interactive drop-from-request prompt")
	return cmd
}

func printJob(cmd *cobra.Command, j resolve.SolvedJob) {
	switch j.Kind {
	case resolve.JobKindUpgrade:
		fmt.Fprintf(cmd.OutOrStdout(), "UPGRADE %s %s -> %s\n", j.UID, j.Item1.Pkg.Version, j.Item0.Pkg.Version)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", j.Kind, j.UID, j.Item0.Pkg.Version)
	}
}

func parseJobType(s string) (universe.JobType, error) {
	switch s {
	case "install":
		return universe.JobInstall, nil
	case "upgrade":
		return universe.JobUpgrade, nil
	case "delete":
		return universe.JobDelete, nil
	case "fetch":
		return universe.JobFetch, nil
	default:
		return 0, fmt.Errorf("unknown job type %q", s)
	}
}

func parseScheme(s string) (versioncmp.Scheme, error) {
	switch s {
	case "semver":
		return versioncmp.SchemeSemver, nil
	case "deb":
		return versioncmp.SchemeDeb, nil
	case "pep440":
		return versioncmp.SchemePEP440, nil
	default:
		return 0, fmt.Errorf("unknown version scheme %q", s)
	}
}

// stdinAskYesNo returns an AskYesNo that either always answers yes (when
// -y is given) or prompts on the command's stdin, the user-prompt
// suspension point named in SPEC_FULL.md §5.
func stdinAskYesNo(cmd *cobra.Command, assumeYes bool) universe.AskYesNo {
	return func(ctx context.Context, def bool, prompt string) bool {
		if assumeYes {
			return true
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if !scanner.Scan() {
			return def
		}
		switch scanner.Text() {
		case "y", "Y", "yes":
			return true
		default:
			return false
		}
	}
}
