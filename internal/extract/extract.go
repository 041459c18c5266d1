// Package extract turns raw Slack export files into the flat dataset the
// scoring pipeline works on.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatscore/internal/dataset"
	"github.com/vovakirdan/chatscore/internal/score"
)

// Record is one extracted parent message in output field order.
type Record struct {
	MessageID        string   `json:"message_id"`
	UserID           string   `json:"user_id"`
	Message          string   `json:"message"`
	Username         string   `json:"username"`
	Datetime         string   `json:"datetime"`
	ReactionType     []string `json:"reaction_type"`
	NumberOfReaction int      `json:"number_of_reaction"`
	ReplyCount       int      `json:"reply_count"`
	MentionedUsers   []string `json:"mentioned_users"`
	Month            string   `json:"month"`
	Week             string   `json:"week"`
	QualityScore     *int     `json:"quality_score_from_llm,omitempty"`
}

// slackEntry is the subset of a Slack export message we care about.
type slackEntry struct {
	TS          string `json:"ts"`
	ThreadTS    string `json:"thread_ts"`
	Text        string `json:"text"`
	User        string `json:"user"`
	UserProfile struct {
		RealName string `json:"real_name"`
	} `json:"user_profile"`
	Reactions []struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	} `json:"reactions"`
	ReplyCount int `json:"reply_count"`
}

var mentionPattern = regexp.MustCompile(`<@(U[A-Z0-9]+)>`)

// Extractor reads Slack export directories and writes dataset files.
type Extractor struct {
	scorer *score.Scorer // nil disables inline scoring
	log    *zerolog.Logger
}

// New builds an Extractor. Pass a nil scorer to skip humor scoring.
func New(scorer *score.Scorer, logger *zerolog.Logger) *Extractor {
	return &Extractor{scorer: scorer, log: logger}
}

// Run reads every *.json file under srcDir, keeps parent messages only
// (thread replies are folded into reply_count by Slack itself), enriches them,
// optionally scores them, and writes the result array to dstPath.
func (e *Extractor) Run(ctx context.Context, srcDir, dstPath string) (int, error) {
	entries, err := e.loadAll(srcDir)
	if err != nil {
		return 0, err
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("extract interrupted: %w", err)
		}

		// Replies carry a thread_ts different from their own ts.
		if entry.ThreadTS != "" && entry.ThreadTS != entry.TS {
			continue
		}

		rec, err := e.buildRecord(ctx, entry)
		if err != nil {
			e.log.Warn().Err(err).Str("ts", entry.TS).Msg("skipping malformed entry")
			continue
		}
		records = append(records, rec)
	}

	if err := dataset.WriteFile(dstPath, records); err != nil {
		return 0, err
	}

	e.log.Info().Int("records", len(records)).Str("path", dstPath).Msg("extraction complete")
	return len(records), nil
}

func (e *Extractor) loadAll(srcDir string) ([]slackEntry, error) {
	dirEntries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read source folder: %w", err)
	}

	var names []string
	for _, de := range dirEntries {
		if !de.IsDir() && strings.HasSuffix(de.Name(), ".json") {
			names = append(names, de.Name())
		}
	}
	sort.Strings(names)

	e.log.Info().Int("files", len(names)).Str("dir", srcDir).Msg("reading export files")

	// Everything is loaded up front so threads spanning files resolve.
	var all []slackEntry
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(srcDir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var entries []slackEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		e.log.Debug().Int("n", i+1).Int("total", len(names)).Str("file", name).
			Int("messages", len(entries)).Msg("loaded export file")
		all = append(all, entries...)
	}
	return all, nil
}

func (e *Extractor) buildRecord(ctx context.Context, entry slackEntry) (Record, error) {
	ts, err := strconv.ParseFloat(entry.TS, 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad ts %q: %w", entry.TS, err)
	}
	sec := int64(ts)
	dt := time.Unix(sec, int64((ts-float64(sec))*1e9))

	var reactionNames []string
	total := 0
	for _, r := range entry.Reactions {
		reactionNames = append(reactionNames, r.Name)
		total += r.Count
	}

	rec := Record{
		MessageID:        entry.TS,
		UserID:           entry.User,
		Message:          entry.Text,
		Username:         entry.UserProfile.RealName,
		Datetime:         dt.Format("2006-01-02 15:04:05"),
		ReactionType:     reactionNames,
		NumberOfReaction: total,
		ReplyCount:       entry.ReplyCount,
		MentionedUsers:   MentionedUsers(entry.Text),
		Month:            dt.Format("2006-01"),
		Week:             mondayOf(dt).Format("2006-01-02"),
	}

	if e.scorer != nil && strings.TrimSpace(entry.Text) != "" {
		e.log.Info().Str("message", snippet(entry.Text)).Msg("scoring message")
		n := e.scorer.Score(ctx, entry.Text, rec.Username)
		rec.QualityScore = &n
	}
	return rec, nil
}

// MentionedUsers extracts Slack user IDs from <@U...> mention tokens.
// Nil means no mentions, which serializes as null like the rest of the
// optional enrichments.
func MentionedUsers(message string) []string {
	matches := mentionPattern.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return ids
}

func mondayOf(dt time.Time) time.Time {
	offset := (int(dt.Weekday()) + 6) % 7
	return dt.AddDate(0, 0, -offset)
}

func snippet(s string) string {
	const max = 50
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
