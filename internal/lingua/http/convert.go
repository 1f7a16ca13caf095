package http

import (
	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
)

func toUser(u domain.User) linguasdk.UserResponse {
	return linguasdk.UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		PreferredName: u.PreferredName,
		Role:          u.Role,
		Level:         string(u.Level),
		MFAEnabled:    u.MFAEnabled(),
		CreatedAt:     u.CreatedAt,
	}
}

func toUsers(us []domain.User) []linguasdk.UserResponse {
	out := make([]linguasdk.UserResponse, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return out
}

func toStory(s domain.Story) linguasdk.StoryResponse {
	return linguasdk.StoryResponse{
		ID:        s.ID,
		Title:     s.Title,
		Language:  s.Language,
		Level:     string(s.Level),
		Body:      s.Body,
		AudioURL:  s.AudioURL,
		CreatedAt: s.CreatedAt,
	}
}

func toCard(c domain.Card) linguasdk.CardResponse {
	return linguasdk.CardResponse{
		ID:          c.ID,
		Word:        c.Word,
		Translation: c.Translation,
		StoryID:     c.StoryID,
		Ease:        c.Ease,
		Interval:    c.Interval,
		Repetitions: c.Repetitions,
		Streak:      c.Streak,
		LastQuality: c.LastQuality,
		Learned:     c.Learned,
		DueAt:       c.DueAt,
		ReviewedAt:  c.ReviewedAt,
		UpdatedAt:   c.UpdatedAt,
		DeletedAt:   c.DeletedAt,
	}
}

func toCards(cs []domain.Card) []linguasdk.CardResponse {
	out := make([]linguasdk.CardResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCard(c))
	}
	return out
}

func toBanner(b domain.Banner) linguasdk.BannerResponse {
	return linguasdk.BannerResponse{
		ID:        b.ID,
		Message:   b.Message,
		Level:     b.Level,
		Active:    b.Active,
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toBanners(bs []domain.Banner) []linguasdk.BannerResponse {
	out := make([]linguasdk.BannerResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBanner(b))
	}
	return out
}

func toSyncResults(rs []service.SyncResult) []linguasdk.SyncResult {
	out := make([]linguasdk.SyncResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, linguasdk.SyncResult{
			OpID:     r.OpID,
			Status:   r.Status,
			CardID:   r.CardID,
			Error:    r.Error,
			Replayed: r.Replayed,
		})
	}
	return out
}

func fromBannerRequest(req linguasdk.BannerRequest) service.BannerInput {
	return service.BannerInput{
		Message:  req.Message,
		Level:    req.Level,
		Active:   req.Active,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}
}
