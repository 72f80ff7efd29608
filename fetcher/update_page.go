// fetcher/update_page.go
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/n4vhf/callbook/models"
)

// Regex to find dates in format MM/DD/YYYY in the row text.
var postedDateRegex = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

const postedDateLayout = "01/02/2006"

// CheckUpdatePage scrapes the FCC weekly-downloads page for the row that
// links the amateur licenses package and pulls out its posted date. The
// import never branches on this; it exists so operators can compare the
// page against the state record without opening a browser.
func CheckUpdatePage(ctx context.Context, pageURL string, timeout time.Duration) (*models.UpdatePageInfo, error) {
	client := http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get URL %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get URL %s: status code %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	info, err := findAmateurRow(doc)
	if err != nil {
		return nil, fmt.Errorf("update page %s: %w", pageURL, err)
	}
	return info, nil
}

// findAmateurRow walks the download tables looking for the row whose link
// points at l_amat.zip, then parses the first MM/DD/YYYY date in that row.
func findAmateurRow(doc *goquery.Document) (*models.UpdatePageInfo, error) {
	var rowText string
	doc.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		href, ok := row.Find("a").Attr("href")
		if !ok || !strings.Contains(href, "l_amat.zip") {
			return true
		}
		rowText = strings.Join(strings.Fields(row.Text()), " ")
		return false
	})

	if rowText == "" {
		return nil, fmt.Errorf("no table row linking l_amat.zip found")
	}

	match := postedDateRegex.FindString(rowText)
	if match == "" {
		return nil, fmt.Errorf("no MM/DD/YYYY date in row %q", rowText)
	}
	posted, err := time.Parse(postedDateLayout, match)
	if err != nil {
		return nil, fmt.Errorf("failed to parse posted date %q: %w", match, err)
	}

	return &models.UpdatePageInfo{
		RawText:     rowText,
		LastUpdated: posted,
		CheckedAt:   time.Now().UTC(),
	}, nil
}
