package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"board-client/controllers"
	"board-client/models"
	"board-client/validation"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newPostsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List, read, create, update and delete posts",
	}
	cmd.AddCommand(
		newListCmd(c),
		newGetCmd(c),
		newCreateCmd(c),
		newUpdateCmd(c),
		newDeleteCmd(c),
	)
	return cmd
}

func newListCmd(c *cli) *cobra.Command {
	var params models.PostListParams
	var field string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A zero struct field means "default"; a flag given as 0 is a mistake.
			flags := cmd.Flags()
			if flags.Changed("page") && params.Page < 1 {
				return validation.Errorf("page: must be at least 1")
			}
			if flags.Changed("limit") && params.Limit < 1 {
				return validation.Errorf("limit: must be at least 1")
			}

			posts, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			params.SearchField = models.SearchField(field)

			resp, err := posts.ListPosts(cmd.Context(), params)
			if err != nil {
				return failure(posts)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			writePostTable(cmd.OutOrStdout(), resp.Data)
			p := resp.Pagination
			fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d posts\n", p.Page, p.TotalPages, p.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&params.Page, "page", models.DefaultPage, "page number, starting at 1")
	cmd.Flags().IntVar(&params.Limit, "limit", models.DefaultLimit, "posts per page")
	cmd.Flags().StringVar(&params.Category, "category", "", "category filter ("+models.AllCategories+" for all)")
	cmd.Flags().StringVar(&params.Search, "search", "", "case-insensitive search term")
	cmd.Flags().StringVar(&field, "field", string(models.SearchFieldTitle), "field to search: title, content or author")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a post (counts as a view)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			post, err := posts.GetPost(cmd.Context(), models.ID(args[0]))
			if err != nil {
				return failure(posts)
			}
			return writeJSON(cmd.OutOrStdout(), post)
		},
	}
}

func newCreateCmd(c *cli) *cobra.Command {
	var data models.PostCreateData

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			post, err := posts.CreatePost(cmd.Context(), data)
			if err != nil {
				return failure(posts)
			}
			return writeJSON(cmd.OutOrStdout(), post)
		},
	}

	cmd.Flags().StringVar(&data.Title, "title", "", "post title")
	cmd.Flags().StringVar(&data.Content, "content", "", "post body")
	cmd.Flags().StringVar(&data.Author, "author", "", "author name")
	cmd.Flags().StringVar(&data.Category, "category", "", "category")
	return cmd
}

func newUpdateCmd(c *cli) *cobra.Command {
	var title, content, author, category string
	var views int

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update the given fields of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}

			var data models.PostUpdateData
			flags := cmd.Flags()
			if flags.Changed("title") {
				data.Title = &title
			}
			if flags.Changed("content") {
				data.Content = &content
			}
			if flags.Changed("author") {
				data.Author = &author
			}
			if flags.Changed("category") {
				data.Category = &category
			}
			if flags.Changed("views") {
				data.Views = &views
			}

			post, err := posts.UpdatePost(cmd.Context(), models.ID(args[0]), data)
			if err != nil {
				return failure(posts)
			}
			return writeJSON(cmd.OutOrStdout(), post)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new body")
	cmd.Flags().StringVar(&author, "author", "", "new author name")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().IntVar(&views, "views", 0, "overwrite the view counter")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			if err := posts.DeletePost(cmd.Context(), models.ID(args[0])); err != nil {
				return failure(posts)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted post %s\n", args[0])
			return nil
		},
	}
}

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List post categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := c.controller(cmd.Context())
			if err != nil {
				return err
			}
			for _, category := range posts.ListCategories(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), category)
			}
			return nil
		},
	}
}

// failure turns the controller's recorded message into the command error.
func failure(posts *controllers.PostsController) error {
	return errors.New(posts.LastError())
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePostTable(w io.Writer, posts []models.Post) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Category", "Title", "Author", "Views", "Created"})
	table.SetAutoWrapText(false)
	for _, p := range posts {
		table.Append([]string{
			p.ID.String(),
			p.Category,
			p.Title,
			p.Author,
			strconv.Itoa(p.Views),
			p.CreatedAt.Local().Format(time.DateTime),
		})
	}
	table.Render()
}
