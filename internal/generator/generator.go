package generator

import (
	"fmt"

	"uirunner/internal/domain"
)

// ProbeText is typed into the search field by the generated input case
const ProbeText = "Selenium"

// Generate returns a template of count test cases for url. The template is a
// starting point for editing; it does not look at the page.
func Generate(url string, count int) []domain.TestCase {
	if count <= 0 {
		return []domain.TestCase{}
	}

	cases := make([]domain.TestCase, 0, count)
	for i := 1; i <= count; i++ {
		cases = append(cases, templateCase(url, i))
	}
	return cases
}

func templateCase(url string, i int) domain.TestCase {
	id := fmt.Sprintf("TC%d", i)
	switch i {
	case 1:
		return domain.TestCase{
			ID:             id,
			Description:    fmt.Sprintf("Check if search input field exists on %s", url),
			Selector:       `input[type="text"], input[name="q"]`,
			Action:         domain.ActionVerifyVisibility,
			ExpectedResult: domain.Visible,
		}
	case 2:
		return domain.TestCase{
			ID:             id,
			Description:    fmt.Sprintf("Check if search button exists on %s", url),
			Selector:       `button[type="submit"], button[name="search"]`,
			Action:         domain.ActionVerifyVisibility,
			ExpectedResult: domain.Visible,
		}
	case 3:
		return domain.TestCase{
			ID:             id,
			Description:    fmt.Sprintf("Perform a search action on %s", url),
			Selector:       `input[name="q"]`,
			Action:         domain.ActionInput,
			InputData:      ProbeText,
			ExpectedResult: "Search results are displayed.",
		}
	case 4:
		return domain.TestCase{
			ID:             id,
			Description:    fmt.Sprintf("Click on the first link on %s", url),
			Selector:       "a[href]",
			Action:         domain.ActionClick,
			ExpectedResult: "Page navigates to the link.",
		}
	default:
		return domain.TestCase{
			ID:             id,
			Description:    fmt.Sprintf("Test Case %d for %s", i, url),
			Selector:       "body",
			Action:         domain.ActionVerifyVisibility,
			ExpectedResult: domain.Visible,
		}
	}
}
