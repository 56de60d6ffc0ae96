package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
	"linkdesk-backend/internal/config"
	"linkdesk-backend/internal/logger"
)

// Client holds the Supabase API client shared by the realtime and storage
// wrappers. Postgres access goes through DatabaseClient instead.
type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

func (c *Client) Realtime(log logger.Logger) *RealtimeClient {
	return NewRealtimeClient(c.Supabase, log)
}

func (c *Client) Storage() *StorageClient {
	return NewStorageClient(c.Config.SupabaseURL, c.Config.SupabasePublishableKey, c.Config.SupabaseStorageBucket)
}
