package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"board-client/client"
	"board-client/config"
	"board-client/controllers"
	"board-client/db"
	"board-client/services"
	"board-client/utils"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
)

// cli carries state shared by the subcommands.
type cli struct {
	cfg   *config.Config
	posts *controllers.PostsController
	rdb   *redis.Client
}

// run executes one command line. Connections opened by the command are closed
// on return, whether or not it failed.
func (c *cli) run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	defer c.close()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (c *cli) close() {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
	c.rdb = nil
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "board",
		Short:         "Browse and edit board posts",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			c.cfg = cfg
			return nil
		},
	}

	root.AddCommand(newPostsCmd(c), newCategoriesCmd(c), newServeCmd(c))
	return root
}

// controller builds the posts controller on first use.
func (c *cli) controller(ctx context.Context) (*controllers.PostsController, error) {
	if c.posts != nil {
		return c.posts, nil
	}

	transport, err := client.NewTransport(c.cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("error creating transport: %w", err)
	}

	ids, err := utils.NewIDGenerator()
	if err != nil {
		return nil, err
	}

	opts := services.Options{
		IDs:         ids,
		CategoryTTL: c.cfg.CategoryCacheTTL,
	}

	if c.cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, db.DefaultRedisConfig(c.cfg.RedisURL))
		if err != nil {
			return nil, err
		}
		host, _ := os.Hostname()
		opts.Cache = db.NewRedisCache(rdb)
		opts.Tags = &utils.RedisTagStore{Client: rdb, Name: host}
		c.rdb = rdb
	} else {
		path := c.cfg.ClientIDFile
		if path == "" {
			if path, err = utils.DefaultTagFile(); err != nil {
				return nil, err
			}
		}
		opts.Tags = &utils.FileTagStore{Path: path}
	}

	c.posts = controllers.NewPostsController(services.NewPostService(transport, opts), nil)
	return c.posts, nil
}
