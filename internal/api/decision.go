package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"safeplate/server/internal/ai"
	"safeplate/server/internal/card"
	"safeplate/server/internal/heuristic"
	"safeplate/server/internal/lang"
	"safeplate/server/internal/localize"
	"safeplate/server/internal/store"
)

// handleDecision runs the full per-request pipeline: resolve the language,
// pick an engine under the cooldown policy, translate and localize, and
// render the card text.
func (s *Server) handleDecision(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Reason: err.Error()})
		return
	}

	resolved := resolveLanguage(req.Language, req.ScannedText)
	log := logrus.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"language":   resolved,
	})

	source := SourceHeuristic
	var decided card.DecisionCard

	if s.useAI && s.producer != nil {
		aiCard, status, ok := s.generativeDecision(c, log, req.ScannedText)
		if status != 0 {
			// Terminal failure already written in AI-only mode.
			return
		}
		if ok {
			decided = aiCard
			source = SourceAI

			if resolved != lang.Default {
				translated, err := s.producer.TranslateCard(c.Request.Context(), decided, resolved)
				if err != nil {
					log.WithError(err).Warn("translation failed, returning English card")
				} else {
					decided = translated
				}
			}
		}
	}

	if source == SourceHeuristic {
		decided = heuristic.Decide(req.ScannedText)
		log.Info("heuristic decision")
	}

	labels := s.resolveLabels(c.Request.Context(), log, resolved)
	loc := localize.Localize(decided, resolved, labels)

	c.JSON(http.StatusOK, DecisionResponse{
		DecisionCard:     loc,
		DecisionCardText: localize.FormatLocalized(loc),
		Source:           source,
		ResolvedLanguage: resolved,
	})
}

// resolveLanguage maps the requested language to a supported code, running
// script detection for "auto" or an empty request.
func resolveLanguage(requested, scannedText string) string {
	if requested == "" || requested == "auto" {
		return lang.Resolve(scannedText)
	}
	return lang.Normalize(requested)
}

// generativeDecision attempts the AI engine under the cooldown policy. The
// returned status is non-zero when a terminal response has already been
// written; ok reports whether a valid card was produced. A false ok with a
// zero status means the caller falls back to the heuristic engine.
func (s *Server) generativeDecision(c *gin.Context, log *logrus.Entry, scannedText string) (card.DecisionCard, int, bool) {
	var empty card.DecisionCard

	if s.cooldown.Active() {
		wait := int(s.cooldown.Remaining().Round(time.Second).Seconds())
		if wait < 1 {
			wait = 1
		}
		log.WithField("retry_after_seconds", wait).Info("cooldown active, skipping generative call")
		if s.aiOnly {
			c.Header("Retry-After", strconv.Itoa(wait))
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:             "ai rate limited",
				Reason:            "cooldown active",
				RetryAfterSeconds: wait,
			})
			return empty, http.StatusTooManyRequests, false
		}
		return empty, 0, false
	}

	decision, err := s.producer.Generate(c.Request.Context(), scannedText)
	if err == nil {
		log.Info("generative decision")
		return decision.Card, 0, true
	}

	var derr *ai.DecisionError
	if errors.As(err, &derr) && derr.RateLimited() {
		s.cooldown.Arm(time.Duration(derr.RetryAfterSeconds) * time.Second)
		log.WithField("retry_after_seconds", derr.RetryAfterSeconds).Warn("generative engine rate limited")
		if s.aiOnly {
			c.Header("Retry-After", strconv.Itoa(derr.RetryAfterSeconds))
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:             "ai rate limited",
				Reason:            derr.Reason,
				RetryAfterSeconds: derr.RetryAfterSeconds,
			})
			return empty, http.StatusTooManyRequests, false
		}
		return empty, 0, false
	}

	log.WithError(err).Warn("generative engine failed")
	if s.aiOnly {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:  "ai unavailable",
			Reason: err.Error(),
		})
		return empty, http.StatusServiceUnavailable, false
	}
	return empty, 0, false
}

// resolveLabels finds heading labels for a language: static table, then the
// process cache, then the persistent store, then a one-time translation
// call. Every miss degrades to English labels rather than failing the
// request. A nil return means Localize should use its own defaulting.
func (s *Server) resolveLabels(ctx context.Context, log *logrus.Entry, language string) *localize.LabelSet {
	if _, ok := localize.Labels(language); ok {
		return nil
	}

	if cached, ok := s.labelCache.Load(language); ok {
		set := cached.(localize.LabelSet)
		return &set
	}

	if s.db != nil {
		record, found, err := s.db.GetLabelSet(language)
		if err != nil {
			log.WithError(err).Warn("label store read failed")
		} else if found {
			set := labelSetFromRecord(record)
			s.labelCache.Store(language, set)
			return &set
		}
	}

	if s.producer == nil || s.cooldown.Active() {
		return nil
	}
	set, err := s.producer.TranslateLabels(ctx, language)
	if err != nil {
		log.WithError(err).Warn("label translation failed, using English headings")
		return nil
	}
	s.labelCache.Store(language, set)
	if s.db != nil {
		if err := s.db.SaveLabelSet(recordFromLabelSet(language, set)); err != nil {
			log.WithError(err).Warn("label store write failed")
		}
	}
	return &set
}

func labelSetFromRecord(r *store.LabelSetRecord) localize.LabelSet {
	return localize.LabelSet{
		DecisionCard:     r.DecisionCard,
		Verdict:          r.Verdict,
		WhyThisMatters:   r.WhyThisMatters,
		WhyYouMightCare:  r.WhyYouMightCare,
		Confidence:       r.Confidence,
		Uncertainty:      r.Uncertainty,
		BetterChoiceHint: r.BetterChoiceHint,
		Closure:          r.Closure,
	}
}

func recordFromLabelSet(language string, set localize.LabelSet) *store.LabelSetRecord {
	return &store.LabelSetRecord{
		Language:         language,
		DecisionCard:     set.DecisionCard,
		Verdict:          set.Verdict,
		WhyThisMatters:   set.WhyThisMatters,
		WhyYouMightCare:  set.WhyYouMightCare,
		Confidence:       set.Confidence,
		Uncertainty:      set.Uncertainty,
		BetterChoiceHint: set.BetterChoiceHint,
		Closure:          set.Closure,
	}
}
