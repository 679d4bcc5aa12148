package service

import (
	"context"
	"fmt"
	"os"

	"inkwell/app/gateway"
	"inkwell/app/models"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by the seed command.
type SeedFile struct {
	Posts []SeedPost `yaml:"posts"`
}

// SeedPost is one post and its comments.
type SeedPost struct {
	Title     string        `yaml:"title"`
	Author    string        `yaml:"author"`
	Content   string        `yaml:"content"`
	CreatedAt string        `yaml:"created_at"`
	Comments  []SeedComment `yaml:"comments"`
}

// SeedComment is a comment attached to a seeded post.
type SeedComment struct {
	Author    string `yaml:"author"`
	Text      string `yaml:"text"`
	CreatedAt string `yaml:"created_at"`
}

// NewSeedCommand loads posts and comments from a YAML file.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load posts and comments from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := ReadSeedFile(args[0])
			if err != nil {
				return err
			}

			db, err := openStore(cmd.Context(), opts.Config.Store)
			if err != nil {
				return err
			}
			defer db.Close()

			posts, comments, err := Seed(cmd.Context(), gateway.New(db, nil), seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d posts and %d comments\n", posts, comments)
			return nil
		},
	}
}

// ReadSeedFile parses a seed file.
func ReadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// Seed validates and writes every post of seed, then its comments.
func Seed(ctx context.Context, gw *gateway.Gateway, seed *SeedFile) (posts, comments int, err error) {
	for i, sp := range seed.Posts {
		in := models.PostInput{
			Title:     sp.Title,
			Author:    sp.Author,
			Content:   sp.Content,
			CreatedAt: sp.CreatedAt,
		}.Trimmed()
		if err := in.Validate(); err != nil {
			return posts, comments, fmt.Errorf("post %d: %s", i+1, models.ValidationMessage(err))
		}

		post, err := gw.CreatePost(ctx, in)
		if err != nil {
			return posts, comments, err
		}
		posts++
		log.Debug().Str("postID", post.ID).Str("title", post.Title).Msg("Seeded post")

		for j, sc := range sp.Comments {
			cin := models.CommentInput{
				PostID:    post.ID,
				Author:    sc.Author,
				Text:      sc.Text,
				CreatedAt: sc.CreatedAt,
			}.Trimmed()
			if err := cin.Validate(); err != nil {
				return posts, comments, fmt.Errorf("post %d comment %d: %s", i+1, j+1, models.ValidationMessage(err))
			}
			if err := gw.AddComment(ctx, cin); err != nil {
				return posts, comments, err
			}
			comments++
		}
	}
	return posts, comments, nil
}
