package models

import (
	"kavyashar.org/intake/internal/buildinfo"
	"kavyashar.org/intake/internal/gtfs"
)

type GitProperties struct {
	GitBranch         string `json:"git.branch"`
	GitBuildTime      string `json:"git.build.time"`
	GitBuildVersion   string `json:"git.build.version"`
	GitCommitId       string `json:"git.commit.id"`
	GitCommitIdAbbrev string `json:"git.commit.id.abbrev"`
	GitCommitTime     string `json:"git.commit.time"`
	GitDirty          string `json:"git.dirty"`
}

func NewGitProperties() GitProperties {
	return GitProperties{
		GitBranch:         buildinfo.Branch,
		GitBuildTime:      buildinfo.BuildTime,
		GitBuildVersion:   buildinfo.Version,
		GitCommitId:       buildinfo.CommitHash,
		GitCommitIdAbbrev: buildinfo.ShortHash(),
		GitCommitTime:     buildinfo.CommitTime,
		GitDirty:          buildinfo.Dirty,
	}
}

// ConfigModel is what the form loads on start: build details, the
// complaint types it can offer and where to centre the stop map.
type ConfigModel struct {
	GitProperties  GitProperties      `json:"gitProperties"`
	Id             string             `json:"id"`
	Name           string             `json:"name"`
	Timezone       string             `json:"timezone"`
	ComplaintTypes []ComplaintType    `json:"complaintTypes"`
	Region         *gtfs.RegionBounds `json:"region,omitempty"`
}
