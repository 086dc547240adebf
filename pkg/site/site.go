// Package site holds the sidebars of the Enclava documentation site.
package site

import "github.com/enclava/sidebars/pkg/sidebar"

// TutorialSidebar is the name of the main documentation sidebar.
const TutorialSidebar = "tutorialSidebar"

// Registry returns the documentation sidebars. Each call builds a new
// registry, so callers never share state.
func Registry() *sidebar.Registry {
	return sidebar.New().MustDefine(TutorialSidebar,
		sidebar.Doc("intro"),
		sidebar.Category("Enclava Platform",
			sidebar.Doc("enclava-platform/overview"),
			sidebar.Doc("enclava-platform/api-reference"),
			sidebar.Doc("enclava-platform/deployment"),
		),
		sidebar.Category("Confidential Computing",
			sidebar.Doc("confidential-computing/how-it-works"),
			sidebar.Category("Privatemode",
				sidebar.Doc("confidential-computing/privatemode/overview"),
				sidebar.Doc("confidential-computing/privatemode/architecture"),
				sidebar.Doc("confidential-computing/privatemode/threat-profile"),
			),
			sidebar.Category("NVIDIA Confidential Enclaves",
				sidebar.Doc("confidential-computing/nvidia-enclaves/overview"),
				sidebar.Doc("confidential-computing/nvidia-enclaves/architecture"),
				sidebar.Doc("confidential-computing/nvidia-enclaves/threat-model"),
			),
		),
	)
}
