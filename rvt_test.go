package rvt

//go:generate go run go.uber.org/mock/mockgen -destination mock_rvt_test.go -package $GOPACKAGE -write_package_comment=false github.com/gogpu/rvt TileRenderer,PageTableWriter
//go:generate go run go.uber.org/mock/mockgen -destination mock_feedback_test.go -package $GOPACKAGE -write_package_comment=false github.com/gogpu/rvt/feedback Source

// testConfig returns a small valid configuration.
func testConfig(tileNum, pageNum, budget int) Config {
	cfg := DefaultConfig()
	cfg.TileNum = tileNum
	cfg.PageNum = pageNum
	cfg.MaxTileRenderPerFrame = budget
	cfg.FeedbackSegments = 1
	cfg.FeedbackWidth = 4
	cfg.FeedbackHeight = 1
	return cfg
}
