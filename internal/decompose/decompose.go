// Package decompose turns one root task into an ordered batch of
// parallelizable subtasks sized to the available worker count.
package decompose

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/flotilla/internal/provider"
	"github.com/ShayCichocki/flotilla/pkg/models"
)

// maxParsedSubTasks caps how many list items are taken from a provider
// response when the target count is smaller than the cap.
const maxParsedSubTasks = 15

// Decomposer breaks a root task into subtasks. A provider, when present,
// drives the breakdown; the domain templates cover every failure of that
// path, so decomposition itself never fails.
type Decomposer struct {
	provider provider.Provider
}

// New creates a Decomposer. p may be nil, in which case every
// decomposition takes the template path.
func New(p provider.Provider) *Decomposer {
	return &Decomposer{provider: p}
}

// Decompose returns exactly targetCount subtasks for root, or one subtask
// when targetCount is below one. The provider breakdown is attempted first;
// a failed call or unusable output falls back to the template for
// root.DomainHint. Short provider output is padded with focus variants of
// the overview subtask, long output is cut to the highest-priority items.
func (d *Decomposer) Decompose(ctx context.Context, root *models.RootTask, targetCount int) []*models.SubTask {
	if targetCount < 1 {
		targetCount = 1
	}

	items := d.providerItems(ctx, root, targetCount)
	if len(items) == 0 {
		items = templateItems(root.DomainHint, root.Instruction, targetCount)
	}

	subs := toSubTasks(root, items)
	subs = padToTarget(subs, root, targetCount)
	subs = truncateToTarget(subs, targetCount)
	renumber(subs)
	return subs
}

// providerItems asks the provider for a numbered breakdown and parses it.
// Any failure returns nil so the caller can fall back to templates.
func (d *Decomposer) providerItems(ctx context.Context, root *models.RootTask, targetCount int) []string {
	if d.provider == nil {
		return nil
	}

	limit := targetCount
	if limit < maxParsedSubTasks {
		limit = maxParsedSubTasks
	}

	resp, err := d.provider.Execute(ctx, provider.Request{Instruction: buildPrompt(root, targetCount)})
	if err != nil {
		log.Printf("[decompose] provider breakdown failed, using template fallback: %v", err)
		return nil
	}

	items := ParseNumbered(resp.Output, limit)
	if len(items) == 0 {
		log.Printf("[decompose] provider returned no usable list, using template fallback")
		return nil
	}
	log.Printf("[decompose] provider produced %d subtasks (cost $%.4f)", len(items), resp.Cost)
	return items
}

func toSubTasks(root *models.RootTask, items []string) []*models.SubTask {
	now := time.Now()
	subs := make([]*models.SubTask, len(items))
	for i, item := range items {
		subs[i] = &models.SubTask{
			ID:          uuid.New().String(),
			RootTaskID:  root.ID,
			Instruction: item,
			CreatedAt:   now,
		}
	}
	return subs
}

// padToTarget duplicates the overview subtask, the most general one in the
// batch, with a distinguishing focus note until the batch reaches target.
func padToTarget(subs []*models.SubTask, root *models.RootTask, target int) []*models.SubTask {
	for len(subs) > 0 && len(subs) < target {
		base := subs[0]
		subs = append(subs, &models.SubTask{
			ID:          uuid.New().String(),
			RootTaskID:  root.ID,
			Instruction: fmt.Sprintf("%s (focus on a distinct aspect, part %d of %d)", base.Instruction, len(subs)+1, target),
			Priority:    base.Priority,
			CreatedAt:   time.Now(),
		})
	}
	return subs
}

// truncateToTarget keeps the target highest-priority subtasks, breaking ties
// by batch position. The first subtask anchors the batch and is always kept.
func truncateToTarget(subs []*models.SubTask, target int) []*models.SubTask {
	if len(subs) <= target {
		return subs
	}

	rest := make([]*models.SubTask, len(subs)-1)
	copy(rest, subs[1:])
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Priority > rest[j].Priority })

	keep := make(map[*models.SubTask]bool, target)
	keep[subs[0]] = true
	for _, s := range rest[:target-1] {
		keep[s] = true
	}

	out := subs[:0]
	for _, s := range subs {
		if keep[s] {
			out = append(out, s)
		}
	}
	return out
}

// renumber assigns final batch positions after padding and truncation so
// that every subtask carries a unique index below the batch total.
func renumber(subs []*models.SubTask) {
	for i, s := range subs {
		s.Index = i
		s.Total = len(subs)
	}
}
