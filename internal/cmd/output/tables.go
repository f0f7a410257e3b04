package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/modelwatch"
	"github.com/agentstation/modelwatch/pkg/state"
)

// RunTable renders a run report as one row per region.
func RunTable(rep modelwatch.Report) Data {
	regions := make([]string, 0, len(rep.Regions))
	for region := range rep.Regions {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	data := Data{
		Headers:      []string{"Region", "Listed", "Known", "New", "Saved", "Error"},
		RightAligned: []int{1, 2, 3},
	}
	for _, region := range regions {
		r := rep.Regions[region]
		data.Rows = append(data.Rows, []string{
			region,
			strconv.Itoa(r.CurrentCount),
			strconv.Itoa(r.PreviousCount),
			strconv.Itoa(len(r.New)),
			yesNo(r.Saved),
			r.Error,
		})
	}
	return data
}

// RunText renders a run report as plain lines: the new items first, then
// any errors.
func RunText(rep modelwatch.Report) Texter {
	return runText(rep)
}

type runText modelwatch.Report

func (r runText) Text() string {
	var b strings.Builder

	regions := make([]string, 0, len(r.NewItems))
	for region := range r.NewItems {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	if len(regions) == 0 {
		b.WriteString("no new models\n")
	}
	for _, region := range regions {
		for _, id := range r.NewItems[region] {
			fmt.Fprintf(&b, "%s\t%s\n", region, id)
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "error: %s\n", e)
	}
	return b.String()
}

// StateTable renders persisted state documents, one row per region.
func StateTable(docs []state.Document) Data {
	data := Data{
		Headers:      []string{"Region", "Models", "Last Updated"},
		RightAligned: []int{1},
	}
	for _, doc := range docs {
		data.Rows = append(data.Rows, []string{
			doc.Region,
			strconv.Itoa(len(doc.ModelIDs)),
			doc.LastUpdated,
		})
	}
	return data
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
