// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package describe defines the external text-generation collaborators the
// remediation engine calls: a description service for figure and link
// alternate text, and a title service. Implementations may be swapped,
// including deterministic fakes for testing.
package describe

import (
	"context"

	"github.com/google/uuid"
)

// ImageRequest asks for alternate text describing one rendered image.
type ImageRequest struct {
	ID            string // correlation id for logging
	Image         []byte
	MIME          string
	ContextBefore string
	ContextAfter  string
}

// LinkRequest asks for alternate text describing one link.
type LinkRequest struct {
	ID            string
	Target        string
	VisibleText   string
	ContextBefore string
	ContextAfter  string
}

// NewImageRequest builds an ImageRequest with a fresh correlation id.
func NewImageRequest(image []byte, mime, before, after string) ImageRequest {
	return ImageRequest{
		ID:            uuid.NewString(),
		Image:         image,
		MIME:          mime,
		ContextBefore: before,
		ContextAfter:  after,
	}
}

// NewLinkRequest builds a LinkRequest with a fresh correlation id.
func NewLinkRequest(target, visible, before, after string) LinkRequest {
	return LinkRequest{
		ID:            uuid.NewString(),
		Target:        target,
		VisibleText:   visible,
		ContextBefore: before,
		ContextAfter:  after,
	}
}

// DescriptionService produces alternate text for figures and links. The
// fallback accessors return the text to apply when the service fails or
// returns nothing; they never block.
type DescriptionService interface {
	ImageAltText(ctx context.Context, req ImageRequest) (string, error)
	LinkAltText(ctx context.Context, req LinkRequest) (string, error)
	ImageFallback() string
	LinkFallback() string
}

// TitleService generates a document title from the current title and text
// extracted from the document's first pages. Echoing the current title
// unchanged is an allowed response.
type TitleService interface {
	GenerateTitle(ctx context.Context, currentTitle, extractedText string) (string, error)
}

const (
	defaultImageFallback = "Image without available description"
	defaultLinkFallback  = "Link"
)

// Static is the unconfigured-deployment implementation: every description
// request resolves immediately to the fallback text, and titles echo
// unchanged. It doubles as a deterministic fake in tests.
type Static struct {
	imageFallback string
	linkFallback  string
}

// NewStatic returns a Static service with the stock fallback texts.
func NewStatic() *Static {
	return &Static{imageFallback: defaultImageFallback, linkFallback: defaultLinkFallback}
}

func (s *Static) ImageAltText(ctx context.Context, req ImageRequest) (string, error) {
	return s.imageFallback, nil
}

func (s *Static) LinkAltText(ctx context.Context, req LinkRequest) (string, error) {
	if req.VisibleText != "" {
		return req.VisibleText, nil
	}
	return s.linkFallback, nil
}

func (s *Static) ImageFallback() string { return s.imageFallback }

func (s *Static) LinkFallback() string { return s.linkFallback }

func (s *Static) GenerateTitle(ctx context.Context, currentTitle, extractedText string) (string, error) {
	return currentTitle, nil
}
