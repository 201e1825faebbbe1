package check

import (
	"fmt"
	"net/url"

	"github.com/selimozcann/HeaderHunter/internal/htmlscan"
	"github.com/selimozcann/HeaderHunter/internal/model"
	"github.com/selimozcann/HeaderHunter/internal/util"
)

const fixSRI = "Add integrity=\"sha384-...\" and crossorigin=\"anonymous\" to cross-origin scripts and stylesheets."

func sri(res *model.FetchResult) []model.Finding {
	ct, _ := res.Effective("Content-Type")
	if !htmlscan.ShouldScan(ct, res.Body) {
		return nil
	}
	page, err := url.Parse(res.FinalURL)
	if err != nil {
		return nil
	}

	var out []model.Finding
	resources, err := htmlscan.Resources(res.Body, ct)
	if err != nil {
		out = append(out, couldNotParse(err, fixSRI, nil))
	}
	for _, r := range resources {
		if r.HasIntegrity {
			continue
		}
		ref, err := page.Parse(r.URL)
		if err != nil || (ref.Scheme != "http" && ref.Scheme != "https") {
			continue
		}
		if util.SameOrigin(page, ref) {
			continue
		}
		scope := "third-party"
		if util.SameSite(page, ref) {
			scope = "cross-origin"
		}
		out = append(out, warn(fmt.Sprintf("%s %s without integrity: %s", scope, kind(r.Tag), ref), fixSRI, r.Snippet))
	}
	if res.BodyTruncated {
		out = append(out, info("body was truncated at the size cap; tags after the cut were not inspected"))
	}
	return out
}

func kind(tag string) string {
	if tag == "script" {
		return "script"
	}
	return "stylesheet"
}
