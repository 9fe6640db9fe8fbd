package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sattbot/domain/entities"
	"sattbot/domain/events"
	"sattbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	// newsBatchLimit caps how many entries a digest post carries
	newsBatchLimit = 5

	// itemRetention is how long stored feed items survive before pruning
	itemRetention = 30 * 24 * time.Hour

	// revealedPollRetention is how long revealed polls are kept
	revealedPollRetention = 7 * 24 * time.Hour

	// revealQuestionLimit caps how much of the question a reveal restates
	revealQuestionLimit = 200
)

// qotdAnswer is the JSON shape stored in a pending reveal's answer payload
type qotdAnswer struct {
	Answer string `json:"answer"`
	Link   string `json:"link,omitempty"`
}

// FeedPipeline runs the scheduled content flows: daily news digests,
// QOTD polls with deferred answer reveals, and retention pruning.
type FeedPipeline struct {
	uowFactory  UnitOfWorkFactory
	fetcher     FeedFetcher
	poster      FeedPoster
	ai          AIClient
	publisher   interfaces.EventPublisher
	newsFeedURL string
	qotdFeedURL string
	aiModel     string
}

// NewFeedPipeline creates a new feed pipeline
func NewFeedPipeline(
	uowFactory UnitOfWorkFactory,
	fetcher FeedFetcher,
	poster FeedPoster,
	ai AIClient,
	publisher interfaces.EventPublisher,
	newsFeedURL, qotdFeedURL, aiModel string,
) *FeedPipeline {
	return &FeedPipeline{
		uowFactory:  uowFactory,
		fetcher:     fetcher,
		poster:      poster,
		ai:          ai,
		publisher:   publisher,
		newsFeedURL: newsFeedURL,
		qotdFeedURL: qotdFeedURL,
		aiModel:     aiModel,
	}
}

// FetchAndPostForGuild ingests the news feed for one guild. With
// fullBatch the entries new this cycle go out as one digest; otherwise
// the newest fetched entry is posted whether or not it was already
// stored. Returns the number of entries posted.
func (p *FeedPipeline) FetchAndPostForGuild(ctx context.Context, guildID, channelID int64, fullBatch bool) (int, error) {
	fetched, err := p.fetcher.Fetch(ctx, p.newsFeedURL)
	if err != nil {
		// Degraded fetch: treat as an empty cycle rather than failing the caller
		return 0, nil
	}
	if len(fetched) == 0 {
		return 0, nil
	}

	cycleStart := time.Now()

	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin news transaction for guild %d: %w", guildID, err)
	}
	defer uow.Rollback()

	items := make([]*entities.FeedItem, 0, len(fetched))
	for _, entry := range fetched {
		items = append(items, &entities.FeedItem{
			GuildID:     guildID,
			Title:       entry.Title,
			Link:        entry.Link,
			Description: entry.Description,
			PublishedAt: entry.Published,
		})
	}

	stored, err := uow.FeedItemRepository().StoreItems(ctx, guildID, items)
	if err != nil {
		return 0, fmt.Errorf("failed to store feed items for guild %d: %w", guildID, err)
	}

	posted := 0
	if fullBatch {
		// The digest carries only entries new this cycle
		if stored == 0 {
			return 0, uow.Commit()
		}

		// Rows inserted this cycle carry a fetched_at at or after
		// cycleStart and come back in feed order, newest first
		newItems, err := uow.FeedItemRepository().ListRecent(ctx, guildID, cycleStart)
		if err != nil {
			return 0, fmt.Errorf("failed to list new feed items for guild %d: %w", guildID, err)
		}
		if len(newItems) > newsBatchLimit {
			newItems = newItems[:newsBatchLimit]
		}

		switch {
		case len(newItems) > 1:
			batch := make([]NewsEntry, 0, len(newItems))
			for _, item := range newItems {
				batch = append(batch, NewsEntry{Title: item.Title, Link: item.Link, Description: item.Description})
			}
			if err := p.poster.PostNewsBatch(ctx, channelID, batch); err != nil {
				return 0, fmt.Errorf("failed to post news batch for guild %d: %w", guildID, err)
			}
			posted = len(newItems)
		case len(newItems) == 1:
			item := newItems[0]
			if err := p.poster.PostNewsItem(ctx, channelID, item.Title, item.Link, item.Description); err != nil {
				return 0, fmt.Errorf("failed to post news item for guild %d: %w", guildID, err)
			}
			posted = 1
		default:
			// cycleStart is application-clock time while fetched_at is
			// database-clock time; a boundary miss means nothing is
			// attributable to this cycle
			return 0, uow.Commit()
		}
	} else {
		// Dedup gates storage, not the post: the newest fetched entry
		// goes out even when everything was already seen
		newest := fetched[0]
		if err := p.poster.PostNewsItem(ctx, channelID, newest.Title, newest.Link, newest.Description); err != nil {
			return 0, fmt.Errorf("failed to post news item for guild %d: %w", guildID, err)
		}
		posted = 1
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit news transaction for guild %d: %w", guildID, err)
	}

	p.publishPosted(ctx, guildID, channelID, "news", posted)
	return posted, nil
}

// RunDailyNews posts the daily digest to every guild with a news channel
func (p *FeedPipeline) RunDailyNews(ctx context.Context) {
	targets, err := p.listTargets(ctx, false)
	if err != nil {
		log.WithError(err).Error("Failed to list news targets")
		return
	}

	for _, target := range targets {
		posted, err := p.FetchAndPostForGuild(ctx, target.GuildID, target.ChannelID, true)
		if err != nil {
			log.WithFields(log.Fields{
				"guild": target.GuildID,
				"error": err,
			}).Error("Daily news run failed for guild")
			continue
		}
		log.WithFields(log.Fields{
			"guild":  target.GuildID,
			"posted": posted,
		}).Info("Daily news posted")
	}
}

// PostPollForGuild posts a QOTD question for one guild and schedules
// its answer reveal. The question comes from the QOTD feed; when the
// feed has nothing new, the AI backend generates one.
func (p *FeedPipeline) PostPollForGuild(ctx context.Context, guildID, channelID int64) error {
	question, answer, err := p.nextQuestion(ctx, guildID)
	if err != nil {
		return err
	}
	if question == "" {
		log.WithField("guild", guildID).Info("No QOTD question available, skipping cycle")
		return nil
	}

	messageID, err := p.poster.PostQuestion(ctx, channelID, question)
	if err != nil {
		return fmt.Errorf("failed to post question for guild %d: %w", guildID, err)
	}

	payload, err := json.Marshal(qotdAnswer{Answer: answer})
	if err != nil {
		return fmt.Errorf("failed to marshal answer payload: %w", err)
	}

	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin reveal transaction for guild %d: %w", guildID, err)
	}
	defer uow.Rollback()

	reveal := &entities.PendingReveal{
		GuildID:       guildID,
		ChannelID:     channelID,
		MessageID:     messageID,
		Question:      question,
		AnswerPayload: payload,
		RevealAt:      time.Now().Add(entities.RevealDelay),
	}
	if err := uow.PendingRevealRepository().Create(ctx, reveal); err != nil {
		return fmt.Errorf("failed to create pending reveal for guild %d: %w", guildID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit reveal transaction for guild %d: %w", guildID, err)
	}

	p.publishPosted(ctx, guildID, channelID, "qotd", 1)
	return nil
}

// nextQuestion produces the next question/answer pair for a guild.
// Feed entries are deduplicated through the feed item store; the feed
// item's title is the question and its description the answer.
func (p *FeedPipeline) nextQuestion(ctx context.Context, guildID int64) (string, string, error) {
	fetched, err := p.fetcher.Fetch(ctx, p.qotdFeedURL)
	if err != nil {
		fetched = nil
	}

	if len(fetched) > 0 {
		cycleStart := time.Now()

		uow := p.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return "", "", fmt.Errorf("failed to begin question transaction for guild %d: %w", guildID, err)
		}
		defer uow.Rollback()

		items := make([]*entities.FeedItem, 0, len(fetched))
		for _, entry := range fetched {
			items = append(items, &entities.FeedItem{
				GuildID:     guildID,
				Title:       entry.Title,
				Link:        entry.Link,
				Description: entry.Description,
				PublishedAt: entry.Published,
			})
		}

		stored, err := uow.FeedItemRepository().StoreItems(ctx, guildID, items)
		if err != nil {
			return "", "", fmt.Errorf("failed to store question items for guild %d: %w", guildID, err)
		}
		if stored > 0 {
			newItems, err := uow.FeedItemRepository().ListRecent(ctx, guildID, cycleStart)
			if err != nil {
				return "", "", fmt.Errorf("failed to list new question items for guild %d: %w", guildID, err)
			}
			if err := uow.Commit(); err != nil {
				return "", "", fmt.Errorf("failed to commit question transaction for guild %d: %w", guildID, err)
			}
			if len(newItems) > 0 {
				return newItems[0].Title, newItems[0].Description, nil
			}
		} else if err := uow.Commit(); err != nil {
			return "", "", fmt.Errorf("failed to commit question transaction for guild %d: %w", guildID, err)
		}
	}

	// Feed exhausted: fall back to a generated question
	return p.generateQuestion(ctx)
}

// generateQuestion asks the AI backend for a question/answer pair
func (p *FeedPipeline) generateQuestion(ctx context.Context) (string, string, error) {
	if p.ai == nil {
		return "", "", nil
	}

	const system = "You write a single trivia question of the day with its answer. " +
		`Respond with JSON only: {"question": "...", "answer": "..."}`
	raw, err := p.ai.Complete(ctx, p.aiModel, system, "Generate today's question.")
	if err != nil {
		log.WithError(err).Warn("AI question generation failed")
		return "", "", nil
	}

	var generated struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		log.WithError(err).Warn("AI question response was not valid JSON")
		return "", "", nil
	}
	return generated.Question, generated.Answer, nil
}

// RunDailyPoll posts a QOTD to every guild with a QOTD channel
func (p *FeedPipeline) RunDailyPoll(ctx context.Context) {
	targets, err := p.listTargets(ctx, true)
	if err != nil {
		log.WithError(err).Error("Failed to list QOTD targets")
		return
	}

	for _, target := range targets {
		if err := p.PostPollForGuild(ctx, target.GuildID, target.ChannelID); err != nil {
			log.WithFields(log.Fields{
				"guild": target.GuildID,
				"error": err,
			}).Error("Daily poll run failed for guild")
		}
	}
}

// RunRevealCheck discloses the answers of all due polls. A reveal that
// cannot be delivered is still marked revealed so it is not retried
// forever against a deleted channel or message.
func (p *FeedPipeline) RunRevealCheck(ctx context.Context) {
	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Error("Failed to begin reveal check transaction")
		return
	}
	defer uow.Rollback()

	due, err := uow.PendingRevealRepository().ListDue(ctx, time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to list due reveals")
		return
	}

	for _, reveal := range due {
		var answer qotdAnswer
		if err := json.Unmarshal(reveal.AnswerPayload, &answer); err != nil {
			log.WithFields(log.Fields{
				"reveal": reveal.ID,
				"error":  err,
			}).Error("Corrupt answer payload, marking revealed")
		} else if err := p.poster.PostReveal(ctx, reveal.ChannelID, reveal.MessageID, reveal.TruncatedQuestion(revealQuestionLimit), answer.Answer); err != nil {
			log.WithFields(log.Fields{
				"reveal": reveal.ID,
				"error":  err,
			}).Warn("Failed to deliver reveal, marking revealed anyway")
		}

		if err := uow.PendingRevealRepository().MarkRevealed(ctx, reveal.ID); err != nil {
			log.WithFields(log.Fields{
				"reveal": reveal.ID,
				"error":  err,
			}).Error("Failed to mark reveal")
		}
	}

	if err := uow.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit reveal check transaction")
	}
}

// RunRetention prunes aged feed items and revealed polls
func (p *FeedPipeline) RunRetention(ctx context.Context) {
	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Error("Failed to begin retention transaction")
		return
	}
	defer uow.Rollback()

	now := time.Now()

	items, err := uow.FeedItemRepository().DeleteOlderThan(ctx, now.Add(-itemRetention))
	if err != nil {
		log.WithError(err).Error("Failed to prune feed items")
		return
	}

	polls, err := uow.PendingRevealRepository().DeleteRevealedOlderThan(ctx, now.Add(-revealedPollRetention))
	if err != nil {
		log.WithError(err).Error("Failed to prune revealed polls")
		return
	}

	if err := uow.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit retention transaction")
		return
	}

	if items > 0 || polls > 0 {
		log.WithFields(log.Fields{
			"items": items,
			"polls": polls,
		}).Info("Retention sweep pruned rows")
	}
}

func (p *FeedPipeline) listTargets(ctx context.Context, qotd bool) ([]entities.FeedTarget, error) {
	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin target listing transaction: %w", err)
	}
	defer uow.Rollback()

	var targets []entities.FeedTarget
	var err error
	if qotd {
		targets, err = uow.GuildConfigRepository().ListQOTDTargets(ctx)
	} else {
		targets, err = uow.GuildConfigRepository().ListNewsTargets(ctx)
	}
	if err != nil {
		return nil, err
	}
	return targets, uow.Commit()
}

func (p *FeedPipeline) publishPosted(ctx context.Context, guildID, channelID int64, kind string, count int) {
	event := events.FeedPostedEvent{
		GuildID:   guildID,
		ChannelID: channelID,
		Kind:      kind,
		ItemCount: count,
	}
	if err := p.publisher.Publish(ctx, events.SubjectFeedPosted, event); err != nil {
		log.WithFields(log.Fields{
			"guild": guildID,
			"kind":  kind,
			"error": err,
		}).Warn("Failed to publish feed event")
	}
}
