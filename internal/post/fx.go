package post

import (
	"github.com/smallbiznis/campaignhub/internal/post/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("post.repository",
	fx.Provide(repository.Provide),
)
