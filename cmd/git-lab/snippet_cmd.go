package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	laberrors "lab/internal/errors"
	"lab/internal/forge"
	"lab/pkg/fileops"
)

const (
	stdinName = "stdin"

	// GitLab rejects snippets above this size by default.
	maxSnippetSize = 50 << 20
)

func (a *app) newSnippetCmd() *cobra.Command {
	var title, visibility string

	cmd := &cobra.Command{
		Use:     "snippet [filename]",
		Aliases: []string{"paste"},
		Short:   "Create a snippet from stdin or file",
		GroupID: groupProject,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op laberrors.Op = "main.snippet"

			switch visibility {
			case forge.VisibilityPublic, forge.VisibilityInternal, forge.VisibilityPrivate:
			default:
				return laberrors.E(op, laberrors.KindInvalid,
					fmt.Sprintf("Invalid visibility %s, expected public, internal or private", visibility))
			}

			fileName := stdinName
			var content []byte
			var err error
			if len(args) == 1 {
				path := fileops.ExpandPath(args[0])
				content, err = fileops.ReadFileLimited(path, maxSnippetSize)
				if err != nil {
					return snippetReadError(op, "Failed to open file "+args[0], err)
				}
				fileName = filepath.Base(path)
			} else {
				content, err = fileops.ReadLimited(cmd.InOrStdin(), maxSnippetSize)
				if err != nil {
					return snippetReadError(op, "Failed to read standard input", err)
				}
			}
			if title == "" {
				title = fileName
			}

			rp, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			snippet, err := rp.Client.CreateSnippet(cmd.Context(), forge.SnippetOptions{
				Title:      title,
				FileName:   fileName,
				Content:    string(content),
				Visibility: visibility,
			})
			if err != nil {
				return laberrors.E(op, laberrors.KindForge, "Failed to create snippet", err)
			}

			a.info("Created snippet at " + snippet.WebURL)
			a.info("You can access it raw at " + snippet.RawURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Add a custom title (default: the file name)")
	cmd.Flags().StringVar(&visibility, "visibility", forge.VisibilityPublic, "Snippet visibility: public, internal or private")

	return cmd
}

func snippetReadError(op laberrors.Op, msg string, err error) error {
	if errors.Is(err, fileops.ErrTooLarge) {
		return laberrors.E(op, laberrors.KindInvalid, fmt.Sprintf("Snippet content exceeds %d MB", maxSnippetSize>>20), err)
	}
	return laberrors.E(op, laberrors.KindIO, msg, err)
}
