package overlay

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"modeon/resources"
)

// Config defines overlay visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
}

// Session defines a single break shown by the overlay.
type Session struct {
	Remaining time.Duration
	Keyword   string
}

// Window is the break countdown window. Its methods must run on the Fyne
// main goroutine.
type Window struct {
	window        fyne.Window
	config        Config
	image         *canvas.Image
	timerLabel    *canvas.Text
	skipButton    *widget.Button
	titleLabel    *canvas.Text
	subtitleLabel *canvas.Text
	messageLabel  *canvas.Text
	background    *canvas.Rectangle
	onSkip        func()
	onClose       func()
}

const (
	overlayWidthFraction  = float32(0.18)
	overlayHeightFraction = float32(0.2)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the break window. It starts hidden.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("modeon break")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: config.Opacity})

	image := canvas.NewImageFromResource(resources.MustTrayIcon(resources.IconBreak))
	image.FillMode = canvas.ImageFillContain

	timerLabel := canvas.NewText("--:--", color.NRGBA{R: 66, G: 165, B: 245, A: 255})
	timerLabel.TextStyle = fyne.TextStyle{Bold: true}
	timerLabel.TextSize = 18

	titleLabel := canvas.NewText("Time for a break", color.White)
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 21

	subtitleLabel := canvas.NewText("", color.White)
	subtitleLabel.TextStyle = fyne.TextStyle{Bold: true}
	subtitleLabel.TextSize = 14

	messageLabel := canvas.NewText("Stand up, stretch and rest your eyes.", color.White)
	messageLabel.TextSize = 15

	skipButton := widget.NewButton("Skip break", nil)

	leftContent := container.New(&leftPanelLayout{}, titleLabel, subtitleLabel, messageLabel, timerLabel)
	rightContent := container.New(&rightPanelLayout{}, image, skipButton)
	content := container.NewGridWithColumns(2, leftContent, rightContent)
	window.SetContent(container.NewStack(background, content))

	overlay := &Window{
		window:        window,
		config:        config,
		image:         image,
		timerLabel:    timerLabel,
		skipButton:    skipButton,
		titleLabel:    titleLabel,
		subtitleLabel: subtitleLabel,
		messageLabel:  messageLabel,
		background:    background,
	}
	skipButton.OnTapped = func() {
		if overlay.onSkip != nil {
			overlay.onSkip()
		}
	}
	window.SetCloseIntercept(func() {
		overlay.Hide()
		if overlay.onClose != nil {
			overlay.onClose()
		}
	})
	return overlay
}

// Show displays the window for a break.
func (overlay *Window) Show(session Session) {
	overlay.subtitleLabel.Text = subtitleFor(session.Keyword)
	overlay.subtitleLabel.Refresh()
	overlay.SetRemaining(session.Remaining)
	overlay.applyWindowMode()
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// Hide closes the window.
func (overlay *Window) Hide() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(false)
	}
	overlay.window.Hide()
}

// SetRemaining updates the countdown.
func (overlay *Window) SetRemaining(remaining time.Duration) {
	overlay.timerLabel.Text = formatDuration(remaining)
	overlay.timerLabel.Refresh()
}

// SetOnSkip sets the skip handler.
func (overlay *Window) SetOnSkip(handler func()) {
	overlay.onSkip = handler
}

// SetOnClose sets the handler run when the user closes the window.
func (overlay *Window) SetOnClose(handler func()) {
	overlay.onClose = handler
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{R: 0, G: 0, B: 0, A: config.Opacity}
	canvas.Refresh(overlay.background)
	overlay.applyWindowMode()
}

// AlphaFromPercent converts an opacity percentage to an alpha value.
func AlphaFromPercent(percent int) uint8 {
	if percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return 255
	}
	return uint8(percent * 255 / 100)
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.resizeToScreenFraction()
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

func subtitleFor(keyword string) string {
	if keyword == "" {
		return "Step away from the screen"
	}
	return fmt.Sprintf("Step away from %s for a moment", keyword)
}

func formatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

type rightPanelLayout struct{}

func (layout *rightPanelLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 2 {
		return
	}
	image := objects[0]
	skip := objects[1]

	skipSize := skip.MinSize()
	skipHeight := skipSize.Height
	if skipHeight > size.Height*0.25 {
		skipHeight = size.Height * 0.25
	}
	imageAreaHeight := size.Height - skipHeight
	if imageAreaHeight < 0 {
		imageAreaHeight = 0
	}

	margin := imageAreaHeight * 0.1
	side := imageAreaHeight * 0.8
	if side > size.Width-margin {
		side = size.Width - margin
	}
	if side < 0 {
		side = 0
	}
	x := size.Width - margin - side
	if x < 0 {
		x = 0
	}
	image.Move(fyne.NewPos(x, margin))
	image.Resize(fyne.NewSize(side, side))

	skipWidth := skipSize.Width * 1.2
	if skipWidth > size.Width {
		skipWidth = size.Width
	}
	skipX := size.Width - margin - skipWidth
	if skipX < 0 {
		skipX = 0
	}
	skipY := imageAreaHeight + (skipHeight-skipSize.Height)/2
	if skipY < 0 {
		skipY = 0
	}
	skip.Move(fyne.NewPos(skipX, skipY))
	skip.Resize(fyne.NewSize(skipWidth, skipSize.Height))
}

func (layout *rightPanelLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 2 {
		return fyne.NewSize(0, 0)
	}
	imageMin := objects[0].MinSize()
	skipMin := objects[1].MinSize()
	width := imageMin.Width
	if skipMin.Width > width {
		width = skipMin.Width
	}
	return fyne.NewSize(width, imageMin.Height+skipMin.Height)
}

type leftPanelLayout struct{}

func (layout *leftPanelLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 4 {
		return
	}
	title, subtitle, message, timer := objects[0], objects[1], objects[2], objects[3]

	pad := size.Height * 0.06
	availableWidth := size.Width - pad*2
	if availableWidth < 0 {
		availableWidth = 0
	}

	titleSize := title.MinSize()
	title.Move(fyne.NewPos(pad, pad))
	title.Resize(fyne.NewSize(availableWidth, titleSize.Height))

	subtitleSize := subtitle.MinSize()
	subtitleY := pad + titleSize.Height + 6
	subtitle.Move(fyne.NewPos(pad, subtitleY))
	subtitle.Resize(fyne.NewSize(availableWidth, subtitleSize.Height))

	messageSize := message.MinSize()
	messageY := subtitleY + subtitleSize.Height + 8
	message.Move(fyne.NewPos(pad, messageY))
	message.Resize(fyne.NewSize(availableWidth, messageSize.Height))

	timerSize := timer.MinSize()
	timerY := size.Height - pad - timerSize.Height
	if timerY < 0 {
		timerY = 0
	}
	timer.Move(fyne.NewPos(pad, timerY))
	timer.Resize(timerSize)
}

func (layout *leftPanelLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 4 {
		return fyne.NewSize(0, 0)
	}
	var width, height float32
	for _, object := range objects[:4] {
		size := object.MinSize()
		if size.Width > width {
			width = size.Width
		}
		height += size.Height
	}
	return fyne.NewSize(width+20, height+40)
}
