package services

import (
	"context"
	"time"

	"safeher/model"

	gocache "github.com/patrickmn/go-cache"
)

type UserLoader interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// UserCache keeps recently read users in memory so alert dispatch does not
// hit the store for the owner on every fire.
type UserCache struct {
	cache  *gocache.Cache
	loader UserLoader
}

func NewUserCache(loader UserLoader, ttl time.Duration) *UserCache {
	return &UserCache{
		cache:  gocache.New(ttl, 2*ttl),
		loader: loader,
	}
}

func (uc *UserCache) FindByID(ctx context.Context, id string) (*model.User, error) {
	if v, found := uc.cache.Get(id); found {
		u := *v.(*model.User)
		return &u, nil
	}

	user, err := uc.loader.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stored := *user
	uc.cache.SetDefault(id, &stored)
	return user, nil
}

func (uc *UserCache) Invalidate(id string) {
	uc.cache.Delete(id)
}

func (uc *UserCache) Len() int {
	return uc.cache.ItemCount()
}
