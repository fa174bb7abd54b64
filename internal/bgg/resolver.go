package bgg

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"olwlg-nametags/internal/models"
)

// Resolver turns the identifiers referenced by trade records into display
// names. Lookups are cached for the duration of the run; nothing persists
// past process exit.
type Resolver struct {
	client  ClientInterface
	logger  *zap.Logger
	members map[string]models.MemberInfo
	items   map[string]models.ItemInfo
}

// NewResolver creates a new Resolver on top of a BGG client.
func NewResolver(client ClientInterface, logger *zap.Logger) *Resolver {
	return &Resolver{
		client:  client,
		logger:  logger,
		members: make(map[string]models.MemberInfo),
		items:   make(map[string]models.ItemInfo),
	}
}

// Resolve validates the token, resolves every distinct member and item
// referenced by the records, and assembles the nametags in record order.
// Any identifier that fails to resolve is terminal for the run.
func (r *Resolver) Resolve(ctx context.Context, records []models.TradeRecord) ([]models.Nametag, error) {
	// A bad token must fail before the first lookup, never mid-resolution.
	if err := r.client.ValidateToken(ctx); err != nil {
		return nil, err
	}

	memberIDs, itemIDs := distinctIDs(records)
	r.logger.Info("Resolving identifiers",
		zap.Int("members", len(memberIDs)),
		zap.Int("items", len(itemIDs)),
	)

	for _, name := range memberIDs {
		if _, err := r.Member(ctx, name); err != nil {
			return nil, err
		}
	}
	for _, id := range itemIDs {
		if _, err := r.Item(ctx, id); err != nil {
			return nil, err
		}
	}

	tags := make([]models.Nametag, 0, len(records))
	for _, rec := range records {
		tags = append(tags, models.Nametag{
			Record:    rec,
			Recipient: r.members[rec.ToMember],
			Sender:    r.members[rec.FromMember],
			Item:      r.items[rec.ItemID],
		})
	}

	return tags, nil
}

// Member resolves a single username, serving repeats from the run cache.
func (r *Resolver) Member(ctx context.Context, name string) (models.MemberInfo, error) {
	if info, ok := r.members[name]; ok {
		return info, nil
	}

	info, err := r.client.GetUser(ctx, name)
	if err != nil {
		return models.MemberInfo{}, fmt.Errorf("resolve member %q: %w", name, err)
	}

	r.logger.Debug("Resolved member",
		zap.String("username", name),
		zap.String("display_name", info.DisplayName),
	)
	r.members[name] = info
	return info, nil
}

// Item resolves a single OLWLG item token, serving repeats from the run cache.
func (r *Resolver) Item(ctx context.Context, itemID string) (models.ItemInfo, error) {
	if info, ok := r.items[itemID]; ok {
		return info, nil
	}

	info, err := r.client.GetItem(ctx, itemID)
	if err != nil {
		return models.ItemInfo{}, fmt.Errorf("resolve item %q: %w", itemID, err)
	}

	r.logger.Debug("Resolved item",
		zap.String("item_id", itemID),
		zap.String("display_name", info.DisplayName),
	)
	r.items[itemID] = info
	return info, nil
}

// distinctIDs collects the sorted distinct usernames and item tokens so
// lookups run in a deterministic order.
func distinctIDs(records []models.TradeRecord) (members []string, items []string) {
	memberSet := make(map[string]struct{}, len(records))
	itemSet := make(map[string]struct{}, len(records))
	for _, rec := range records {
		memberSet[rec.FromMember] = struct{}{}
		memberSet[rec.ToMember] = struct{}{}
		itemSet[rec.ItemID] = struct{}{}
	}

	for m := range memberSet {
		members = append(members, m)
	}
	for it := range itemSet {
		items = append(items, it)
	}
	sort.Strings(members)
	sort.Strings(items)
	return members, items
}
