package overlay

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PanelID is the DOM id of the injected status panel.
const PanelID = "safety-video-progress"

// PanelStyle is the inline style of the panel element: fixed to the top-left
// corner above the page content.
const PanelStyle = "position: fixed; top: 10px; left: 10px; " +
	"background: rgba(0, 0, 0, 0.8); color: white; padding: 10px 15px; " +
	"border-radius: 6px; font-family: Arial, sans-serif; font-size: 14px; " +
	"z-index: 10000; border: 1px solid #555; line-height: 1.4; " +
	"min-width: 250px; max-width: 300px;"

// Panel text. The course site is Chinese, so is the panel.
const (
	textLoading      = "正在获取学习时间信息..."
	textEnsureLoaded = "请确保页面已加载完成"
	textCourse       = "当前课程: "
	textStatus       = "状态: "
	textInProgress   = "进行中"
	textStudied      = "已学习:"
	textRequired     = "要求学习:"
	textCompletion   = "完成度:"
	textSwitching    = "准备切换下一课程..."
	textAllDone      = "所有课程已完成! 🎉"
	textTaskDone     = "✅ 学习任务已完成"
)

const (
	styleHeader = "margin-bottom: 8px; font-weight: bold; border-bottom: 1px solid #555; padding-bottom: 5px;"
	styleRow    = "display: flex; justify-content: space-between; margin-bottom: 5px;"
	styleTrack  = "margin-top: 8px; background: #333; height: 6px; border-radius: 3px;"
	styleFill   = "background: #4CAF50; height: 100%%; width: %d%%; border-radius: 3px; transition: width 0.3s;"
)

// Render returns the inner markup of the status panel for v.
func Render(v View) (string, error) {
	var nodes []*html.Node
	switch v.Mode {
	case ModeAllComplete:
		nodes = allCompleteNodes(v)
	case ModeInProgress:
		nodes = inProgressNodes(v)
	default:
		nodes = loadingNodes(v)
	}

	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("failed to render panel: %w", err)
		}
	}
	return b.String(), nil
}

func loadingNodes(v View) []*html.Node {
	return []*html.Node{
		div("color: #ff9800; margin-bottom: 5px;", text(textLoading)),
		div("font-size: 12px; margin-bottom: 5px;", text(textCourse+v.Course)),
		div("font-size: 11px; color: #ccc;", text(textEnsureLoaded)),
	}
}

func allCompleteNodes(v View) []*html.Node {
	return []*html.Node{
		div(styleHeader, text(textAllDone)),
		div("text-align: center; color: #4CAF50; font-size: 16px; margin: 10px 0;", text(textTaskDone)),
		div("font-size: 12px; text-align: center;", text(fmt.Sprintf("共完成 %d 个课程", v.Count))),
	}
}

func inProgressNodes(v View) []*html.Node {
	status := fmt.Sprintf("%s (%d/%d)", textInProgress, v.Position, v.Count)

	nodes := []*html.Node{
		div(styleHeader, text(textCourse+v.Course)),
		div("font-size: 12px; margin-bottom: 5px; color: #ccc;", text(textStatus+status)),
		div(styleRow,
			span("", text(textStudied)),
			span("color: #4CAF50; font-weight: bold;", text(v.Studied))),
		div(styleRow,
			span("", text(textRequired)),
			span("", text(v.Total))),
		div(styleRow,
			span("", text(textCompletion)),
			span("color: #2196F3; font-weight: bold;", text(fmt.Sprintf("%d%%", v.Percent)))),
		div(styleTrack,
			div(fmt.Sprintf(styleFill, v.BarWidth()))),
	}

	if v.Switching() {
		nodes = append(nodes, div("margin-top: 8px; color: #FF9800; font-size: 12px; text-align: center;", text(textSwitching)))
	}
	return nodes
}

func element(a atom.Atom, style string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if style != "" {
		n.Attr = []html.Attribute{{Key: "style", Val: style}}
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func div(style string, children ...*html.Node) *html.Node {
	return element(atom.Div, style, children...)
}

func span(style string, children ...*html.Node) *html.Node {
	return element(atom.Span, style, children...)
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
