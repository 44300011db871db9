// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/jobtrail/source"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// pageSize is the largest page the list endpoint serves.
const pageSize = 500

// Config selects the mailbox and listing behavior.
type Config struct {
	CredentialsFile  string
	TokenFile        string
	User             string // "me" when empty
	MaxResults       int    // 0 lists everything
	IncludeSpamTrash bool
}

// Source reads messages through the Gmail API.
type Source struct {
	svc              *gmail.Service
	user             string
	maxResults       int
	includeSpamTrash bool
	logger           *slog.Logger
}

var _ source.Source = (*Source)(nil)

// New creates an authorized source from the credential and token files.
// Extra client options are passed to the API client after the authorized
// HTTP client.
func New(ctx context.Context, cfg Config, logger *slog.Logger, opts ...option.ClientOption) (*Source, error) {
	hc, err := httpClient(ctx, cfg.CredentialsFile, cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(ctx, cfg, logger, append([]option.ClientOption{option.WithHTTPClient(hc)}, opts...)...)
}

// NewWithOptions creates a source using only the given client options.
func NewWithOptions(ctx context.Context, cfg Config, logger *slog.Logger, opts ...option.ClientOption) (*Source, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	user := cfg.User
	if user == "" {
		user = "me"
	}
	return &Source{
		svc:              svc,
		user:             user,
		maxResults:       cfg.MaxResults,
		includeSpamTrash: cfg.IncludeSpamTrash,
		logger:           logger.With("component", "gmail"),
	}, nil
}

// ListIDs returns the ids of all messages matching filter, newest first.
func (s *Source) ListIDs(ctx context.Context, filter string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		size := int64(pageSize)
		if s.maxResults > 0 {
			remaining := s.maxResults - len(ids)
			if remaining <= 0 {
				break
			}
			size = min(size, int64(remaining))
		}

		call := s.svc.Users.Messages.List(s.user).
			Q(filter).
			MaxResults(size).
			IncludeSpamTrash(s.includeSpamTrash).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("listing messages: %w", err)
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		s.logger.Debug("listed page", "messages", len(resp.Messages), "total", len(ids))

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	if s.maxResults > 0 && len(ids) > s.maxResults {
		ids = ids[:s.maxResults]
	}
	return ids, nil
}

// GetDetail fetches one message in full format.
func (s *Source) GetDetail(ctx context.Context, id string) (*source.Detail, error) {
	msg, err := s.svc.Users.Messages.Get(s.user, id).Format("full").Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", source.ErrMessageNotFound, id)
		}
		return nil, fmt.Errorf("fetching message %s: %w", id, err)
	}
	if msg.Payload == nil {
		return &source.Detail{}, nil
	}

	headers := msg.Payload.Headers
	return &source.Detail{
		Sender:     cleanField(senderAddress(header(headers, "From"))),
		Subject:    cleanField(header(headers, "Subject")),
		Body:       cleanField(messageBody(msg.Payload)),
		ReceivedAt: cleanField(receivedAt(header(headers, "Date"))),
	}, nil
}
