package cmd

import (
	"context"
	"fmt"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/internal/database"
	"github.com/priyxstudio/pathway/pagination"
	"github.com/priyxstudio/pathway/planner"
)

var repairArgs struct {
	dryRun bool
	yes    bool
}

// confirmRepair asks the operator before broken orders are rewritten.
var confirmRepair = func(broken int) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Renumber %d broken order sequence(s)?", broken)).
		Description("Rows keep their relative order, but clients may see positions change.").
		Value(&ok).
		Run()
	return ok, err
}

func newRepairCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "repair",
		Short: "Checks that every plan and module keeps a gapless order and renumbers the ones that do not.",
		PreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
			initLogging()
		},
		Run: repairCmdRun,
	}

	command.Flags().BoolVar(&repairArgs.dryRun, "dry-run", false, "only report broken orders without changing them")
	command.Flags().BoolVarP(&repairArgs.yes, "yes", "y", false, "renumber without asking for confirmation")

	return command
}

func repairCmdRun(cmd *cobra.Command, _ []string) {
	cfg := config.Get()
	if err := database.Initialize(cmd.Context(), cfg.Database); err != nil {
		log.WithField("error", err).Fatal("failed to initialize database")
	}
	defer database.Close(database.Instance())

	svc := planner.NewService(database.Instance(), pagination.Bounds{
		Default: cfg.Pagination.DefaultLimit,
		Max:     cfg.Pagination.MaxLimit,
	})
	results, applied, err := repairOrders(cmd.Context(), svc, repairArgs.dryRun, repairArgs.yes, confirmRepair)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			log.Info("repair aborted, nothing was changed")
			return
		}
		log.WithField("error", err).Fatal("failed to repair orders")
	}

	if !applied {
		log.WithField("broken", len(results)).Info("finished checking orders, nothing was changed")
		return
	}
	for _, r := range results {
		log.WithFields(log.Fields{"scope": r.Scope, "rows": r.Changed}).Info("renumbered order")
	}
	log.WithField("repaired", len(results)).Info("finished repairing orders")
}

// repairOrders looks for broken order sequences and renumbers them unless
// dryRun is set or confirm declines. applied reports whether anything was
// written; when it is false the results come from the check alone.
func repairOrders(ctx context.Context, svc *planner.Service, dryRun, yes bool, confirm func(int) (bool, error)) (results []planner.RepairResult, applied bool, err error) {
	broken, err := svc.Repair(ctx, true)
	if err != nil {
		return nil, false, err
	}
	if dryRun || len(broken) == 0 {
		return broken, false, nil
	}
	if !yes {
		ok, err := confirm(len(broken))
		if err != nil {
			return nil, false, errors.WithStack(err)
		}
		if !ok {
			return broken, false, nil
		}
	}
	results, err = svc.Repair(ctx, false)
	if err != nil {
		return nil, false, err
	}
	return results, true, nil
}
