// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package remediate repairs the accessibility tag structure, metadata and
// reading order of PDF documents: it demotes layout tables mis-tagged as
// data tables, removes annotations whose structure association is broken,
// normalizes tab order, fills in missing language, title and bookmarks,
// and generates alternate text for figures and links through an external
// description service, rasterizing page regions when no raster image can
// be extracted. Remediation is best-effort throughout: malformed input is
// skipped, never raised.
package remediate
