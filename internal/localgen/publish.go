package localgen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/uuid"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// NewPublishHandler returns the publish stage handler. The local variant does
// not call a hosting provider; it treats the exported site directory as the
// deployment target and, when configured, commits it to a local git
// repository so the export survives regeneration.
func NewPublishHandler(opts Options) pipeline.Handler {
	return func(_ context.Context, input any) (any, error) {
		in, err := decode[pipeline.PublishInput](input)
		if err != nil {
			return nil, err
		}

		start := time.Now()

		out := &pipeline.PublishOutput{
			ProjectID:    in.ProjectID,
			DeploymentID: uuid.NewString(),
			URL:          "https://" + in.Domain,
			CustomDomain: in.Domain,
			SSL:          true,
			CDN:          true,
		}

		if in.OutputPath != "" {
			files, size, err := measureDir(in.OutputPath)
			if err != nil {
				return nil, sgerrors.Wrap(err, sgerrors.CategoryPublish, sgerrors.SeverityError, "inspect export directory")
			}
			out.DeploymentStats.FilesUploaded = files
			out.DeploymentStats.TotalSize = size

			if opts.CommitExport {
				if err := commitExport(in.OutputPath, in.Slug); err != nil {
					return nil, sgerrors.Wrap(err, sgerrors.CategoryPublish, sgerrors.SeverityError, "commit export")
				}
			}
		}

		out.DeploymentStats.Duration = time.Since(start).Milliseconds()
		return out, nil
	}
}

func measureDir(dir string) (int, int64, error) {
	var files int
	var size int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == git.GitDirName {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += info.Size()
		return nil
	})
	return files, size, err
}

func commitExport(dir, slug string) error {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	if err := wt.AddGlob("."); err != nil {
		return fmt.Errorf("stage files: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if status.IsClean() {
		return nil
	}

	_, err = wt.Commit(fmt.Sprintf("Publish %s", slug), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "sitegen",
			Email: "sitegen@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
