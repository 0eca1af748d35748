package project

import (
	"encoding/xml"

	"github.com/qobs-build/projgen/internal/pathutil"
	"github.com/qobs-build/projgen/internal/render"
)

//
// structures for .vcxproj.filters
//

type VSFiltersProject struct {
	XMLName      xml.Name             `xml:"Project"`
	ToolsVersion string               `xml:"ToolsVersion,attr"`
	XMLNS        string               `xml:"xmlns,attr"`
	ItemGroups   []VSFiltersItemGroup `xml:"ItemGroup"`
}

type VSFiltersItemGroup struct {
	ClCompiles []VSFiltersItem   `xml:"ClCompile,omitempty"`
	ClIncludes []VSFiltersItem   `xml:"ClInclude,omitempty"`
	Filters    []VSFiltersFilter `xml:"Filter,omitempty"`
}

type VSFiltersItem struct {
	Include string `xml:"Include,attr"`
	Filter  string `xml:"Filter,omitempty"`
}

type VSFiltersFilter struct {
	Include          string `xml:"Include,attr"`
	UniqueIdentifier string `xml:"UniqueIdentifier"`
}

// writeFilters writes the folder groupings of the trimmed file tree so the IDE shows the same
// hierarchy.
func writeFilters(em *render.Emitter, out string, p *Project, files []FileView, tree []pathutil.FileNode) error {
	var compiles, includes []VSFiltersItem
	for _, f := range files {
		item := VSFiltersItem{Include: f.Path, Filter: f.Filter}
		if f.Compile {
			compiles = append(compiles, item)
		} else {
			includes = append(includes, item)
		}
	}

	var filters []VSFiltersFilter
	for _, name := range pathutil.Filters(tree) {
		filters = append(filters, VSFiltersFilter{
			Include:          name,
			UniqueIdentifier: NameGUID("filter", p.Name+`\`+name),
		})
	}

	doc := VSFiltersProject{
		ToolsVersion: "4.0",
		XMLNS:        "http://schemas.microsoft.com/developer/msbuild/2003",
		ItemGroups: []VSFiltersItemGroup{
			{Filters: filters},
			{ClCompiles: compiles},
			{ClIncludes: includes},
		},
	}
	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return em.Write(out, []byte(xml.Header+string(output)))
}
