package ghimport

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
)

// File is a markdown document fetched from a repository.
type File struct {
	Path    string // path relative to the import directory
	Content string
}

// Fetcher lists and fetches markdown files from one repository directory.
type Fetcher struct {
	client *Client
	owner  string
	repo   string
	dir    string
}

// NewFetcher creates a fetcher rooted at dir within owner/repo. An empty
// dir imports from the repository root.
func NewFetcher(client *Client, owner, repo, dir string) *Fetcher {
	return &Fetcher{client: client, owner: owner, repo: repo, dir: dir}
}

// ListMarkdown recursively lists every .md file under the import directory.
func (f *Fetcher) ListMarkdown(ctx context.Context) ([]string, error) {
	return f.listRecursive(ctx, f.dir, "")
}

func (f *Fetcher) listRecursive(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	_, dirContents, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list contents of %s: %w", fullPath, err)
	}

	var files []string
	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}
		itemRelPath := path.Join(relativePath, *item.Name)

		switch *item.Type {
		case "file":
			if strings.HasSuffix(*item.Name, ".md") {
				files = append(files, itemRelPath)
			}
		case "dir":
			sub, err := f.listRecursive(ctx, path.Join(fullPath, *item.Name), itemRelPath)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
		}
	}
	return files, nil
}

// FetchFile retrieves one file's decoded content.
func (f *Fetcher) FetchFile(ctx context.Context, relativePath string) (*File, error) {
	fullPath := path.Join(f.dir, relativePath)

	fileContent, _, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get content of %s: %w", fullPath, err)
	}
	if fileContent == nil {
		return nil, fmt.Errorf("no file content returned for %s", fullPath)
	}

	content, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return nil, fmt.Errorf("decode content of %s: %w", fullPath, err)
	}

	return &File{
		Path:    relativePath,
		Content: string(content),
	}, nil
}
