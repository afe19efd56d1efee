// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sassoftware/pdf-remediate/logger"
)

// RemediationOptions configures a Remediator. Create it once, validate it,
// and do not mutate it while runs are in flight.
type RemediationOptions struct {
	// MaxConcurrentDocs limits how many documents may be remediated at
	// the same time through one Remediator.
	MaxConcurrentDocs int `validate:"min=1,max=32"`

	// ServiceTimeout bounds each external description/title call.
	ServiceTimeout time.Duration `validate:"required"`

	// DemoteSmallTables enables the size heuristic that demotes small
	// headerless tables in addition to the structural checks.
	DemoteSmallTables bool

	// RenderDPI is the resolution used when a figure has to be
	// rasterized because no raster image can be extracted for it.
	RenderDPI float64 `validate:"min=36,max=600"`

	// MaxAltTextRunes caps alt text written to figure and link nodes.
	MaxAltTextRunes int `validate:"min=20,max=2000"`

	// ContextRunes caps the reading-order context gathered on each side
	// of a figure or link for description requests.
	ContextRunes int `validate:"min=0,max=4000"`

	// LangSamplePages / LangMinChars / LangMinConfidence gate the
	// language fix: detection only runs over the first LangSamplePages
	// pages, and the result is only applied when at least LangMinChars
	// characters were extracted and detection confidence reaches
	// LangMinConfidence.
	LangSamplePages   int     `validate:"min=1,max=10"`
	LangMinChars      int     `validate:"min=1"`
	LangMinConfidence float64 `validate:"min=0,max=1"`

	// TitleSamplePages / TitleMinWords gate the title fix: text from the
	// first TitleSamplePages pages feeds the title service, and the
	// service is never called when fewer than TitleMinWords words were
	// extracted.
	TitleSamplePages int `validate:"min=1,max=5"`
	TitleMinWords    int `validate:"min=1"`

	DebugOn bool
	Logger  logger.LogFunc
}

// NewDefaultOptions returns the options used by the ingest pipeline.
func NewDefaultOptions() *RemediationOptions {
	return &RemediationOptions{
		MaxConcurrentDocs: 4,
		ServiceTimeout:    30 * time.Second,
		DemoteSmallTables: true,
		RenderDPI:         150,
		MaxAltTextRunes:   300,
		ContextRunes:      500,
		LangSamplePages:   3,
		LangMinChars:      200,
		LangMinConfidence: 0.8,
		TitleSamplePages:  3,
		TitleMinWords:     40,
		DebugOn:           false,
	}
}

func (opts *RemediationOptions) Validate() error {
	logger.Debug("Validating RemediationOptions")
	validate := validator.New()
	return validate.Struct(opts)
}
