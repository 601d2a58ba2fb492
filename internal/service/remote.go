package service

import (
	"context"

	"sidenote-sync-server/internal/github"
)

// ContentsAPI is the slice of the remote used by the single-file backup.
type ContentsAPI interface {
	GetContents(ctx context.Context, repo, path, ref string) (*github.ContentFile, error)
	PutContents(ctx context.Context, repo, path string, req *github.PutContentsRequest) (*github.PutContentsResponse, error)
}

// GitDataAPI is the slice of the remote used to publish a multi-file commit.
type GitDataAPI interface {
	GetRef(ctx context.Context, repo, branch string) (*github.Ref, error)
	GetCommit(ctx context.Context, repo, sha string) (*github.Commit, error)
	CreateTree(ctx context.Context, repo string, req *github.CreateTreeRequest) (*github.Tree, error)
	CreateCommit(ctx context.Context, repo string, req *github.CreateCommitRequest) (*github.Commit, error)
	CreateRef(ctx context.Context, repo, branch, sha string) (*github.Ref, error)
	UpdateRef(ctx context.Context, repo, branch, sha string, force bool) (*github.Ref, error)
}

type RemoteAPI interface {
	ContentsAPI
	GitDataAPI
}

// RemoteFactory builds a remote client bound to one token.
type RemoteFactory func(ctx context.Context, token string) RemoteAPI

func GitHubRemoteFactory(opts ...github.Option) RemoteFactory {
	return func(ctx context.Context, token string) RemoteAPI {
		return github.NewClient(ctx, token, opts...)
	}
}
