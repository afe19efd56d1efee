// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package describe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageRequest_FreshIDs(t *testing.T) {
	a := NewImageRequest([]byte{1}, "image/png", "before", "after")
	b := NewImageRequest([]byte{1}, "image/png", "before", "after")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "image/png", a.MIME)
}

func TestStatic_ImageAltText(t *testing.T) {
	s := NewStatic()
	alt, err := s.ImageAltText(context.Background(), NewImageRequest(nil, "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, s.ImageFallback(), alt)
}

func TestStatic_LinkAltText(t *testing.T) {
	s := NewStatic()

	tests := []struct {
		name    string
		visible string
		want    string
	}{
		{name: "prefers visible text", visible: "Annual report", want: "Annual report"},
		{name: "falls back without visible text", visible: "", want: s.LinkFallback()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alt, err := s.LinkAltText(context.Background(), NewLinkRequest("https://example.com", tt.visible, "", ""))
			require.NoError(t, err)
			assert.Equal(t, tt.want, alt)
		})
	}
}

func TestStatic_GenerateTitle(t *testing.T) {
	s := NewStatic()
	title, err := s.GenerateTitle(context.Background(), "Current", "body text")
	require.NoError(t, err)
	assert.Equal(t, "Current", title)
}

func TestNewLLMService_UnknownProvider(t *testing.T) {
	_, err := NewLLMService(LLMConfig{Provider: "nope"})
	assert.Error(t, err)
}
