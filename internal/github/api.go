package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

type ContentFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

type PutContentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type PutContentsResponse struct {
	Content ContentFile `json:"content"`
	Commit  struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type Ref struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA  string `json:"sha"`
		Type string `json:"type"`
	} `json:"object"`
}

type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Tree    struct {
		SHA string `json:"sha"`
	} `json:"tree"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
}

const (
	FileMode = "100644"
	TypeBlob = "blob"
)

type TreeEntry struct {
	Path    string `json:"path"`
	Mode    string `json:"mode"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type CreateTreeRequest struct {
	Tree     []TreeEntry `json:"tree"`
	BaseTree string      `json:"base_tree,omitempty"`
}

type Tree struct {
	SHA string `json:"sha"`
}

type CreateCommitRequest struct {
	Message string   `json:"message"`
	Tree    string   `json:"tree"`
	Parents []string `json:"parents,omitempty"`
}

type CreateRefRequest struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

type UpdateRefRequest struct {
	SHA   string `json:"sha"`
	Force bool   `json:"force"`
}

// escapePath escapes every segment of a slash separated path.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func repoPath(repo string) string {
	return "/repos/" + escapePath(repo)
}

func (c *Client) GetContents(ctx context.Context, repo, path, ref string) (*ContentFile, error) {
	endpoint := repoPath(repo) + "/contents/" + escapePath(path) + "?" + url.Values{"ref": {ref}}.Encode()

	var file ContentFile
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *Client) PutContents(ctx context.Context, repo, path string, req *PutContentsRequest) (*PutContentsResponse, error) {
	endpoint := repoPath(repo) + "/contents/" + escapePath(path)

	var resp PutContentsResponse
	if err := c.Do(ctx, http.MethodPut, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetRef(ctx context.Context, repo, branch string) (*Ref, error) {
	endpoint := repoPath(repo) + "/git/ref/heads/" + escapePath(branch)

	var ref Ref
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

func (c *Client) GetCommit(ctx context.Context, repo, sha string) (*Commit, error) {
	endpoint := repoPath(repo) + "/git/commits/" + url.PathEscape(sha)

	var commit Commit
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

func (c *Client) CreateTree(ctx context.Context, repo string, req *CreateTreeRequest) (*Tree, error) {
	var tree Tree
	if err := c.Do(ctx, http.MethodPost, repoPath(repo)+"/git/trees", req, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

func (c *Client) CreateCommit(ctx context.Context, repo string, req *CreateCommitRequest) (*Commit, error) {
	var commit Commit
	if err := c.Do(ctx, http.MethodPost, repoPath(repo)+"/git/commits", req, &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

func (c *Client) CreateRef(ctx context.Context, repo, branch, sha string) (*Ref, error) {
	req := &CreateRefRequest{Ref: "refs/heads/" + branch, SHA: sha}

	var ref Ref
	if err := c.Do(ctx, http.MethodPost, repoPath(repo)+"/git/refs", req, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// UpdateRef moves the branch to sha. With force false GitHub rejects anything
// that is not a fast-forward.
func (c *Client) UpdateRef(ctx context.Context, repo, branch, sha string, force bool) (*Ref, error) {
	endpoint := repoPath(repo) + "/git/refs/heads/" + escapePath(branch)

	var ref Ref
	if err := c.Do(ctx, http.MethodPatch, endpoint, &UpdateRefRequest{SHA: sha, Force: force}, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}
