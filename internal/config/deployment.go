package config

import "strings"

// Deployment defines the [deployment] section, read by the browser plugin scaffolds
type Deployment struct {
	Company      string `toml:"company"`
	CompanyKey   string `toml:"company_key"`
	ProductName  string `toml:"product_name"`
	PluginName   string `toml:"plugin_name"`
	Description  string `toml:"description"`
	MimeType     string `toml:"mime_type"`
	Version      string `toml:"version"`
	ActiveXCLSID string `toml:"activex_clsid"`
	ActiveXLibID string `toml:"activex_libid"`
	SafariBundle string `toml:"safari_bundle_id"`
	NPPluginID   string `toml:"np_plugin_id"`
	SamplePage   string `toml:"sample_page"`
}

func DefaultDeployment() Deployment {
	return Deployment{
		Company:     "Company",
		CompanyKey:  "company",
		ProductName: "Product",
		PluginName:  "WebGamePlugin",
		Description: "Web game plugin",
		MimeType:    "application/x-webgame",
		Version:     "1.0",
		SamplePage:  "web/sample.html",
	}
}

// VersionDotted returns the version as configured, e.g. "1.2".
func (d Deployment) VersionDotted() string {
	if d.Version == "" {
		return "1.0"
	}
	return d.Version
}

// VersionComma returns the version in resource script form, padded to four parts: "1,2,0,0".
func (d Deployment) VersionComma() string {
	parts := strings.Split(d.VersionDotted(), ".")
	for len(parts) < 4 {
		parts = append(parts, "0")
	}
	return strings.Join(parts[:4], ",")
}
