package review

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	fontassets "github.com/park285/cheese-review-bot/internal/assets/fonts"
	"github.com/park285/cheese-review-bot/internal/replay"
)

type MoveHighlight struct {
	From nchess.Square
	To   nchess.Square
}

type RenderOptions struct {
	Orientation replay.Orientation
	Highlight   *MoveHighlight
	HUDHeader   string
	HUDCaption  string
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *nchess.Board, opts RenderOptions) ([]byte, error)
}

type svgBoardRenderer struct{}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{}
}

const (
	squareSize    = 72
	boardSquares  = 8
	boardSize     = squareSize * boardSquares
	sideMargin    = 36
	topMargin     = 124
	bottomMargin  = 36
	headerHeight  = 42
	captionHeight = 32
	panelGap      = 12
	gapToBoard    = 18
	panelRadius   = 12
	panelPadX     = 24
	shadowOffsetY = 6
)

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *nchess.Board, opts RenderOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	g := boardGeometry{
		origin:  image.Point{X: sideMargin, Y: topMargin},
		flipped: opts.Orientation == replay.BlackPerspective,
	}
	boardRect := image.Rect(g.origin.X, g.origin.Y, g.origin.X+boardSize, g.origin.Y+boardSize)

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	if err := drawHUD(img, opts, boardRect); err != nil {
		return nil, err
	}
	drawBoardShadow(img, boardRect)
	drawSquares(img, g)
	drawHighlight(img, board, opts.Highlight, g)
	if err := drawPieces(ctx, img, board, g); err != nil {
		return nil, err
	}
	if err := drawCoordinates(img, g); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

var (
	backgroundColor           = color.RGBA{R: 22, G: 24, B: 36, A: 255}
	lightSquare               = color.RGBA{233, 207, 163, 255}
	darkSquare                = color.RGBA{187, 136, 96, 255}
	whiteMoveHighlightFill    = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveHighlightArrow   = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	neutralMoveHighlightArrow = color.NRGBA{R: 182, G: 184, B: 190, A: 140}
	hudPanelColor             = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudCaptionPanelColor      = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor            = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary            = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudCaptionTextColor       = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	boardShadowColor          = color.NRGBA{0, 0, 0, 60}
	coordinateTextColor       = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// boardGeometry maps squares to pixels for one orientation.
type boardGeometry struct {
	origin  image.Point
	flipped bool
}

// cell returns the screen column and row of sq.
func (g boardGeometry) cell(sq nchess.Square) (col, row int) {
	file := int(sq.File())
	rank := int(sq.Rank())
	if g.flipped {
		return 7 - file, rank
	}
	return file, 7 - rank
}

func (g boardGeometry) squareRect(sq nchess.Square) image.Rectangle {
	col, row := g.cell(sq)
	x := g.origin.X + col*squareSize
	y := g.origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func (g boardGeometry) center(sq nchess.Square) image.Point {
	r := g.squareRect(sq)
	return image.Point{X: r.Min.X + squareSize/2, Y: r.Min.Y + squareSize/2}
}

func allSquares() []nchess.Square {
	out := make([]nchess.Square, 0, 64)
	for rank := 0; rank < boardSquares; rank++ {
		for file := 0; file < boardSquares; file++ {
			out = append(out, nchess.NewSquare(nchess.File(file), nchess.Rank(rank)))
		}
	}
	return out
}

func drawBoardShadow(img *image.RGBA, boardRect image.Rectangle) {
	shadowRect := image.Rect(boardRect.Min.X+4, boardRect.Min.Y+8, boardRect.Max.X+10, boardRect.Max.Y+12)
	imagedraw.Draw(img, shadowRect, image.NewUniform(boardShadowColor), image.Point{}, imagedraw.Over)
}

func drawSquares(dst imagedraw.Image, g boardGeometry) {
	for _, sq := range allSquares() {
		imagedraw.Draw(dst, g.squareRect(sq), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
	}
}

func drawPieces(ctx context.Context, dst imagedraw.Image, board *nchess.Board, g boardGeometry) error {
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := renderPieceImage(piece, squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, g.squareRect(sq), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

// drawHighlight fills both squares for a white move and draws an arrow for a
// black one. The board is the position after the move.
func drawHighlight(img *image.RGBA, board *nchess.Board, highlight *MoveHighlight, g boardGeometry) {
	if highlight == nil {
		return
	}
	switch moverColor, ok := moveHighlightMoverColor(board, highlight); {
	case ok && moverColor == nchess.Black:
		drawArrow(img, g.center(highlight.From), g.center(highlight.To), blackMoveHighlightArrow)
	case ok && moverColor == nchess.White:
		drawSquareOverlay(img, g.squareRect(highlight.From), whiteMoveHighlightFill)
		drawSquareOverlay(img, g.squareRect(highlight.To), whiteMoveHighlightFill)
	default:
		drawArrow(img, g.center(highlight.From), g.center(highlight.To), neutralMoveHighlightArrow)
	}
}

func moveHighlightMoverColor(board *nchess.Board, highlight *MoveHighlight) (nchess.Color, bool) {
	if board == nil || highlight == nil {
		return nchess.NoColor, false
	}
	if piece := board.Piece(highlight.To); piece != nchess.NoPiece {
		return piece.Color(), true
	}
	return nchess.NoColor, false
}

func drawHUD(img *image.RGBA, opts RenderOptions, boardRect image.Rectangle) error {
	headerFace, err := fontassets.HeaderFace()
	if err != nil {
		return err
	}
	captionFace, err := fontassets.CaptionFace()
	if err != nil {
		return err
	}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Game review"
	}
	caption := strings.TrimSpace(opts.HUDCaption)

	captionBottom := boardRect.Min.Y - gapToBoard
	captionTop := captionBottom - captionHeight
	headerBottom := captionTop - panelGap
	headerTop := headerBottom - headerHeight

	headerRect := image.Rect(boardRect.Min.X, headerTop, boardRect.Max.X, headerBottom)
	drawRoundedPanel(img, headerRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, headerRect, panelRadius, hudPanelColor)
	headerDrawer := &font.Drawer{Dst: img, Face: headerFace}
	title = truncateWithEllipsis(headerFace, title, headerRect.Dx()-panelPadX*2)
	drawCenteredString(headerDrawer, headerRect, title, hudTextPrimary)

	if caption == "" {
		return nil
	}
	captionDrawer := &font.Drawer{Dst: img, Face: captionFace}
	width := captionDrawer.MeasureString(caption).Round() + panelPadX*2
	if width < 180 {
		width = 180
	}
	if width > boardRect.Dx() {
		width = boardRect.Dx()
	}
	left := boardRect.Min.X + (boardRect.Dx()-width)/2
	captionRect := image.Rect(left, captionTop, left+width, captionBottom)
	drawRoundedPanel(img, captionRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, captionRect, panelRadius, hudCaptionPanelColor)
	caption = truncateWithEllipsis(captionFace, caption, captionRect.Dx()-panelPadX*2)
	drawCenteredString(captionDrawer, captionRect, caption, hudCaptionTextColor)
	return nil
}

func drawSquareOverlay(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawArrow(img *image.RGBA, start, end image.Point, clr color.Color) {
	if start == end {
		return
	}
	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	baseLength := length - float64(squareSize)*0.45
	if baseLength < float64(squareSize)*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := float64(squareSize) * 0.18
	headWidth := float64(squareSize) * 0.32

	baseX := float64(start.X) + dirX*baseLength
	baseY := float64(start.Y) + dirY*baseLength

	fillQuad(img,
		pointF{float64(start.X) - perpX*halfWidth, float64(start.Y) - perpY*halfWidth},
		pointF{float64(start.X) + perpX*halfWidth, float64(start.Y) + perpY*halfWidth},
		pointF{baseX + perpX*halfWidth, baseY + perpY*halfWidth},
		pointF{baseX - perpX*halfWidth, baseY - perpY*halfWidth},
		clr,
	)
	fillTriangleF(img,
		pointF{float64(end.X), float64(end.Y)},
		pointF{baseX - perpX*headWidth/2, baseY - perpY*headWidth/2},
		pointF{baseX + perpX*headWidth/2, baseY + perpY*headWidth/2},
		clr,
	)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	maxRadius := rect.Dx() / 2
	if r := rect.Dy() / 2; r < maxRadius {
		maxRadius = r
	}
	if radius > maxRadius {
		radius = maxRadius
	}
	fill := image.NewUniform(clr)
	if radius <= 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}
	// cross of two rectangles plus four corner discs; regions overlap only
	// inside the corners, which the disc pass skips
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	corners := []struct {
		center image.Point
		area   image.Rectangle
	}{
		{image.Pt(rect.Min.X+radius, rect.Min.Y+radius), image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+radius, rect.Min.Y+radius)},
		{image.Pt(rect.Max.X-radius-1, rect.Min.Y+radius), image.Rect(rect.Max.X-radius, rect.Min.Y, rect.Max.X, rect.Min.Y+radius)},
		{image.Pt(rect.Min.X+radius, rect.Max.Y-radius-1), image.Rect(rect.Min.X, rect.Max.Y-radius, rect.Min.X+radius, rect.Max.Y)},
		{image.Pt(rect.Max.X-radius-1, rect.Max.Y-radius-1), image.Rect(rect.Max.X-radius, rect.Max.Y-radius, rect.Max.X, rect.Max.Y)},
	}
	for _, c := range corners {
		drawQuarterDisc(img, c.center, c.area, radius, clr)
	}
}

func drawQuarterDisc(img *image.RGBA, center image.Point, area image.Rectangle, radius int, clr color.Color) {
	rSquared := radius * radius
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			dx, dy := x-center.X, y-center.Y
			if dx*dx+dy*dy > rSquared {
				continue
			}
			blendPixel(img, x, y, clr)
		}
	}
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if drawer == nil || text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

// drawCoordinates labels ranks on the left edge and files along the bottom,
// following the orientation.
func drawCoordinates(dst imagedraw.Image, g boardGeometry) error {
	face, err := fontassets.CaptionFace()
	if err != nil {
		return err
	}
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEndY := g.origin.Y + boardSize

	for i := 0; i < boardSquares; i++ {
		rankSq := nchess.NewSquare(nchess.FileA, nchess.Rank(i))
		if g.flipped {
			rankSq = nchess.NewSquare(nchess.FileH, nchess.Rank(i))
		}
		c := g.center(rankSq)
		drawCenteredText(drawer, nchess.Rank(i).String(), g.origin.X-sideMargin/2, c.Y+ascent/2)

		fileSq := nchess.NewSquare(nchess.File(i), nchess.Rank1)
		fc := g.center(fileSq)
		drawCenteredText(drawer, nchess.File(i).String(), fc.X, boardEndY+ascent)
	}
	return nil
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	srcA := float64(sa) / 65535.0
	if srcA <= 0 {
		return
	}
	srcR := float64(sr) / 65535.0
	srcG := float64(sg) / 65535.0
	srcB := float64(sb) / 65535.0

	dst := img.RGBAAt(x, y)
	dstA := float64(dst.A) / 255.0
	dstR := float64(dst.R) / 255.0
	dstG := float64(dst.G) / 255.0
	dstB := float64(dst.B) / 255.0

	// premultiplied source-over
	outA := srcA + dstA*(1-srcA)
	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8((srcR + dstR*(1-srcA)) * 255.0),
		G: floatToUint8((srcG + dstG*(1-srcA)) * 255.0),
		B: floatToUint8((srcB + dstB*(1-srcA)) * 255.0),
		A: floatToUint8(outA * 255.0),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func pointInTriangleFloat(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	gamma := 1 - alpha - beta
	return alpha >= 0 && beta >= 0 && gamma >= 0
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareColor(sq nchess.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func fillQuad(img *image.RGBA, p0, p1, p2, p3 pointF, clr color.Color) {
	fillTriangleF(img, p0, p1, p2, clr)
	fillTriangleF(img, p0, p2, p3, clr)
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(math.Min(a.X, math.Min(b.X, c.X))))
	maxX := int(math.Ceil(math.Max(a.X, math.Max(b.X, c.X))))
	minY := int(math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y))))
	maxY := int(math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y))))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangleFloat(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

type pointF struct {
	X float64
	Y float64
}
