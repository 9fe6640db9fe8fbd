package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// revealCheckInterval is how often due reveals are looked for
	revealCheckInterval = 15 * time.Minute

	// retentionInterval is how often the retention sweep runs
	retentionInterval = 168 * time.Hour
)

// untilNextHour returns the duration until the next occurrence of the
// given UTC hour
func untilNextHour(hour int) time.Duration {
	now := time.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !now.Before(next) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// StartDailyNewsWorker posts the news digest once a day at the given
// UTC hour. Returns a cleanup function to stop the worker gracefully.
func (p *FeedPipeline) StartDailyNewsWorker(ctx context.Context, postHour int) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithField("hour", postHour).Info("Daily news worker started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Daily news worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Daily news worker shutting down (stop requested)...")
				return
			case <-time.After(untilNextHour(postHour)):
				p.RunDailyNews(ctx)
			}
		}
	}()

	// Cleanup waits so an in-flight run finishes before the store closes
	return func() {
		close(stopChan)
		<-done
	}
}

// StartDailyPollWorker posts the QOTD once a day at the given UTC
// hour. Returns a cleanup function to stop the worker gracefully.
func (p *FeedPipeline) StartDailyPollWorker(ctx context.Context, postHour int) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithField("hour", postHour).Info("Daily poll worker started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Daily poll worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Daily poll worker shutting down (stop requested)...")
				return
			case <-time.After(untilNextHour(postHour)):
				p.RunDailyPoll(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
		<-done
	}
}

// StartRevealCheckWorker periodically discloses due poll answers.
// Runs once immediately so reveals missed during downtime go out
// without waiting a full interval.
func (p *FeedPipeline) StartRevealCheckWorker(ctx context.Context) func() {
	ticker := time.NewTicker(revealCheckInterval)
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.Info("Reveal check worker started")

		p.RunRevealCheck(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info("Reveal check worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Reveal check worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				p.RunRevealCheck(ctx)
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
		<-done
	}
}

// StartRetentionWorker periodically prunes aged feed items and
// revealed polls. Runs once immediately on startup.
func (p *FeedPipeline) StartRetentionWorker(ctx context.Context) func() {
	ticker := time.NewTicker(retentionInterval)
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.Info("Retention worker started")

		p.RunRetention(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info("Retention worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Retention worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				p.RunRetention(ctx)
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
		<-done
	}
}
