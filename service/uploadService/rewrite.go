package uploadService

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ResizeMarker - sentinel string indicating the height-reporting script is
// already present in a document; uploads containing it are not re-injected
const ResizeMarker = "iframe-resize"

// hotlinkDomains - external image hosts known to block hotlinking; documents
// referencing them would render broken images, so the references are removed
// on upload
var hotlinkDomains = []string{
	"cdninstagram.com",
	"fbcdn.net",
	"instagram.com",
	"facebook.com",
}

var backgroundImagePattern = regexp.MustCompile(`background(?:-image)?\s*:\s*[^;{}]*url\([^)]*\)[^;{}]*;?`)

// resizeScript - posts the document's rendered height to the embedding frame
// on load, on resize and on DOM mutation so the frame can grow with the content
const resizeScript = `
function sendHeightToParent() {
  if (window.parent !== window) {
    var height = Math.max(
      document.body.scrollHeight,
      document.body.offsetHeight,
      document.documentElement.clientHeight,
      document.documentElement.scrollHeight,
      document.documentElement.offsetHeight
    );
    window.parent.postMessage({ type: 'iframe-resize', height: height }, '*');
  }
}

window.addEventListener('load', function () {
  sendHeightToParent();
  setTimeout(sendHeightToParent, 2000);
});

var resizeTimer;
window.addEventListener('resize', function () {
  clearTimeout(resizeTimer);
  resizeTimer = setTimeout(sendHeightToParent, 300);
});

var observer = new MutationObserver(function () {
  sendHeightToParent();
});
observer.observe(document.body, { childList: true, subtree: true, attributes: true });
`

// Rewrite - prepares an uploaded HTML document for serving: strips references
// to hotlink-blocking image hosts and injects the height-reporting script
// unless the document already carries the resize marker. Every step fails
// open; content that cannot be rewritten is stored as uploaded
func Rewrite(content []byte) []byte {
	rewritten := StripHotlinkedImages(content)
	if !bytes.Contains(rewritten, []byte(ResizeMarker)) {
		rewritten = InjectResizeScript(rewritten)
	}
	return rewritten
}

func referencesHotlinkDomain(s string) bool {
	lower := strings.ToLower(s)
	for _, domain := range hotlinkDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// StripHotlinkedImages - removes <img> elements and inline style attributes
// referencing known hotlink-blocking hosts by walking the parsed document,
// and blanks matching background-image declarations inside <style> bodies.
// Content without any such reference is returned byte-identical
func StripHotlinkedImages(content []byte) []byte {
	if !referencesHotlinkDomain(string(content)) {
		return content
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return content
	}

	stripNode(doc)

	var buf bytes.Buffer
	if err = html.Render(&buf, doc); err != nil {
		return content
	}
	return buf.Bytes()
}

func stripNode(n *html.Node) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling

		if isHotlinkedImage(child) {
			n.RemoveChild(child)
			child = next
			continue
		}

		if child.Type == html.ElementNode {
			stripAttributes(child)
			if child.Data == "style" && child.FirstChild != nil && child.FirstChild.Type == html.TextNode {
				child.FirstChild.Data = stripBackgroundDeclarations(child.FirstChild.Data)
			}
		}

		stripNode(child)
		child = next
	}
}

func isHotlinkedImage(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "img" {
		return false
	}
	for _, attr := range n.Attr {
		if (attr.Key == "src" || attr.Key == "srcset") && referencesHotlinkDomain(attr.Val) {
			return true
		}
	}
	return false
}

func stripAttributes(n *html.Node) {
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Key == "style" && referencesHotlinkDomain(attr.Val) {
			continue
		}
		kept = append(kept, attr)
	}
	n.Attr = kept
}

func stripBackgroundDeclarations(css string) string {
	return backgroundImagePattern.ReplaceAllStringFunc(css, func(declaration string) string {
		if referencesHotlinkDomain(declaration) {
			return ""
		}
		return declaration
	})
}

// InjectResizeScript - appends the height-reporting script right before
// </body>, or at the end of the document when no closing body tag exists
func InjectResizeScript(content []byte) []byte {
	script := []byte("<script>" + resizeScript + "</script>")

	if idx := bytes.LastIndex(content, []byte("</body>")); idx >= 0 {
		injected := make([]byte, 0, len(content)+len(script))
		injected = append(injected, content[:idx]...)
		injected = append(injected, script...)
		injected = append(injected, content[idx:]...)
		return injected
	}

	return append(append(make([]byte, 0, len(content)+len(script)), content...), script...)
}
