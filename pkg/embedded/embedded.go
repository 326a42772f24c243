package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/prompts/scale_advisor_system.txt
var ScaleAdvisorSystemTxt []byte

//go:embed data/prompts/scale_advisor_user.tmpl
var ScaleAdvisorUserTmpl []byte

//go:embed data/prompts/song_analysis_system.txt
var SongAnalysisSystemTxt []byte

//go:embed data/prompts/song_analysis_user.tmpl
var SongAnalysisUserTmpl []byte
