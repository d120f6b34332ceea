package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/repository/firestore"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("POLYCONN_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("POLYCONN_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			indexConfig := indexConfig()

			if !dryRun {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx, indexConfig); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
				return nil
			}

			plan, err := client.GetMigrationPlan(ctx, indexConfig)
			if err != nil {
				return goerr.Wrap(err, "failed to create migration plan")
			}
			if len(plan.Steps) == 0 {
				logger.Info("No changes required")
				return nil
			}
			for _, step := range plan.Steps {
				logger.Info("Migration step",
					"collection", step.Collection,
					"operation", step.Operation,
					"description", step.Description,
					"destructive", step.Destructive)
			}
			return nil
		},
	}
}

func ascending(paths ...string) fireconf.Index {
	fields := make([]fireconf.IndexField, len(paths))
	for i, p := range paths {
		fields[i] = fireconf.IndexField{Path: p, Order: fireconf.OrderAscending}
	}
	return fireconf.Index{Fields: fields}
}

// indexConfig lists the composite indexes behind the repository list queries
func indexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				// ConnectionRepository.List: owner_id ASC, id ASC
				Name:    firestore.CollectionConnections,
				Indexes: []fireconf.Index{ascending("owner_id", "id")},
			},
			{
				// DataSourceRepository.List: connection_id ASC, id ASC
				Name:    firestore.CollectionDataSources,
				Indexes: []fireconf.Index{ascending("connection_id", "id")},
			},
			{
				// PipelineRepository.List: owner_id ASC, id ASC
				Name:    firestore.CollectionPipelines,
				Indexes: []fireconf.Index{ascending("owner_id", "id")},
			},
			{
				// ActivityRepository.List: user_id ASC, created_at DESC
				Name: firestore.CollectionActivities,
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{Path: "user_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
