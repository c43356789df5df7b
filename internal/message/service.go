package message

import (
	"context"
	stderrors "errors"
	"log/slog"
	"math"
	"time"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/access"
	"github.com/frahmantamala/teamchat/internal/core/account"
	"github.com/frahmantamala/teamchat/internal/core/common/validation"
	messageDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/message"
	"github.com/frahmantamala/teamchat/internal/core/events"
	"github.com/frahmantamala/teamchat/internal/group"
)

type RepositoryAPI interface {
	Create(ctx context.Context, m *messageDatamodel.Message) error
	ListPage(ctx context.Context, companyID, groupID int64, offset, limit int) ([]*messageDatamodel.Message, error)
	Count(ctx context.Context, companyID, groupID int64) (int64, error)
	// GetByID returns a live message of the company, or nil.
	GetByID(ctx context.Context, companyID, id int64) (*messageDatamodel.Message, error)
	// MarkDeleted flags a live message and reports whether a row changed.
	MarkDeleted(ctx context.Context, id int64) (bool, error)
}

// GroupFinder resolves a group inside one company.
type GroupFinder interface {
	Lookup(ctx context.Context, companyID, groupID int64) (*group.Group, error)
}

type ServiceAPI interface {
	Send(ctx context.Context, actor *account.Account, groupID int64, content string) (*MessageResponse, error)
	History(ctx context.Context, actor *account.Account, groupID int64, page, limit int) (*Page, error)
	Delete(ctx context.Context, actor *account.Account, messageID int64) error
}

type Service struct {
	repo      RepositoryAPI
	groups    GroupFinder
	publisher events.Publisher
	seq       *sequencer
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, groups GroupFinder, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		groups:    groups,
		publisher: publisher,
		seq:       newSequencer(),
		logger:    logger,
	}
}

// Append stores content from sender in g. Content is trimmed and must be 1..2000 code units.
func (s *Service) Append(ctx context.Context, sender *account.Account, g *group.Group, content string) (*Message, error) {
	trimmed, verr := validation.MessageContent(content)
	if verr != nil {
		return nil, verr
	}

	row := ToDataModel(&Message{
		Content:      trimmed,
		SenderID:     sender.ID,
		GroupID:      g.ID,
		CompanyID:    g.CompanyID,
		DepartmentID: g.DepartmentID,
		CreatedAt:    time.Now(),
	})
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, errors.NewInternalError("failed to store message", err)
	}

	m := FromDataModel(row)
	m.Sender = SenderFromAccount(sender)
	return m, nil
}

// ListPage returns live messages of g, newest page first, each page ordered oldest to newest.
func (s *Service) ListPage(ctx context.Context, g *group.Group, page, pageSize int) (*Page, error) {
	page, pageSize = NormalizePaging(page, pageSize)

	rows, err := s.repo.ListPage(ctx, g.CompanyID, g.ID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, errors.NewInternalError("failed to list messages", err)
	}
	total, err := s.repo.Count(ctx, g.CompanyID, g.ID)
	if err != nil {
		return nil, errors.NewInternalError("failed to count messages", err)
	}

	messages := make([]MessageResponse, len(rows))
	for i, row := range rows {
		messages[len(rows)-1-i] = FromDataModel(row).ToResponse()
	}

	return &Page{
		Messages: messages,
		Pagination: Pagination{
			Page:       page,
			Limit:      pageSize,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

// SoftDelete hides a message from history. Only the sender or an admin of the same company may do it.
func (s *Service) SoftDelete(ctx context.Context, messageID int64, requester *account.Account) (*Message, error) {
	if requester == nil {
		return nil, errors.ErrUnauthenticated
	}

	row, err := s.repo.GetByID(ctx, requester.CompanyID, messageID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load message", err)
	}
	if row == nil || !access.CanDeleteMessage(requester, row.SenderID, row.CompanyID) {
		return nil, errors.ErrMessageNotFound
	}

	changed, err := s.repo.MarkDeleted(ctx, row.ID)
	if err != nil {
		return nil, errors.NewInternalError("failed to delete message", err)
	}
	if !changed {
		return nil, errors.ErrMessageNotFound
	}
	row.IsDeleted = true
	return FromDataModel(row), nil
}

// Send is the single write path for both transports: tenant lookup, policy,
// persist, then fan-out through the event bus, sequenced per group.
func (s *Service) Send(ctx context.Context, actor *account.Account, groupID int64, content string) (*MessageResponse, error) {
	g, err := s.authorize(ctx, actor, groupID)
	if err != nil {
		return nil, err
	}

	unlock := s.seq.lock(g.ID)
	defer unlock()

	m, err := s.Append(ctx, actor, g, content)
	if err != nil {
		return nil, err
	}

	resp := m.ToResponse()
	if err := s.publisher.PublishSync(ctx, events.NewMessageCreatedEvent(g.ID, m.ID, resp)); err != nil {
		s.logger.Error("failed to fan out message", "group_id", g.ID, "message_id", m.ID, "error", err)
	}
	return &resp, nil
}

func (s *Service) History(ctx context.Context, actor *account.Account, groupID int64, page, limit int) (*Page, error) {
	g, err := s.authorize(ctx, actor, groupID)
	if err != nil {
		return nil, err
	}
	return s.ListPage(ctx, g, page, limit)
}

func (s *Service) Delete(ctx context.Context, actor *account.Account, messageID int64) error {
	m, err := s.SoftDelete(ctx, messageID, actor)
	if err != nil {
		return err
	}

	s.logger.Info("message deleted", "message_id", m.ID, "group_id", m.GroupID, "actor_id", actor.ID)
	if err := s.publisher.PublishSync(ctx, events.NewMessageDeletedEvent(m.GroupID, m.ID, actor.ID)); err != nil {
		s.logger.Error("failed to fan out deletion", "group_id", m.GroupID, "message_id", m.ID, "error", err)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, actor *account.Account, groupID int64) (*group.Group, error) {
	if actor == nil {
		return nil, errors.ErrUnauthenticated
	}
	g, err := s.groups.Lookup(ctx, actor.CompanyID, groupID)
	if err != nil {
		if stderrors.Is(err, errors.ErrGroupNotFound) {
			s.logger.Warn("message access to unknown group",
				"actor_id", actor.ID,
				"company_id", actor.CompanyID,
				"group_id", groupID)
		}
		return nil, err
	}
	if !access.CanAccessGroup(actor, g.Scope()) {
		s.logger.Warn("message access denied",
			"actor_id", actor.ID,
			"company_id", actor.CompanyID,
			"group_id", groupID)
		return nil, errors.ErrAccessDenied
	}
	return g, nil
}
