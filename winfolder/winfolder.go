// SPDX-License-Identifier: MIT

//go:build windows

// Package winfolder resolves the actual paths of Windows known folders
// through SHGetKnownFolderPath. Known folders are identified by GUID, so the
// lookup works regardless of localization or folder redirection.
package winfolder

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Folder identifies a Windows known folder.
type Folder int

const (
	Desktop Folder = iota
	Documents
	Downloads
	Music
	Pictures
	Videos
	Screenshots
	SavedGames
	Contacts
	Links
	Favorites
	Recent
	Profile
	Public
	LocalAppData
	RoamingAppData
	ProgramData
	ProgramFiles
	ProgramFilesX86
	ProgramFilesX64
	UserProgramFiles
	UserProfiles
	StartMenu
	Startup
	Programs
	SendTo
	Templates
	QuickLaunch
	Fonts
	System
	SystemX86
	Windows
	InternetCache
	History
	OneDrive
)

var folderIDs = map[Folder]*windows.KNOWNFOLDERID{
	Desktop:          windows.FOLDERID_Desktop,
	Documents:        windows.FOLDERID_Documents,
	Downloads:        windows.FOLDERID_Downloads,
	Music:            windows.FOLDERID_Music,
	Pictures:         windows.FOLDERID_Pictures,
	Videos:           windows.FOLDERID_Videos,
	Screenshots:      windows.FOLDERID_Screenshots,
	SavedGames:       windows.FOLDERID_SavedGames,
	Contacts:         windows.FOLDERID_Contacts,
	Links:            windows.FOLDERID_Links,
	Favorites:        windows.FOLDERID_Favorites,
	Recent:           windows.FOLDERID_Recent,
	Profile:          windows.FOLDERID_Profile,
	Public:           windows.FOLDERID_Public,
	LocalAppData:     windows.FOLDERID_LocalAppData,
	RoamingAppData:   windows.FOLDERID_RoamingAppData,
	ProgramData:      windows.FOLDERID_ProgramData,
	ProgramFiles:     windows.FOLDERID_ProgramFiles,
	ProgramFilesX86:  windows.FOLDERID_ProgramFilesX86,
	ProgramFilesX64:  windows.FOLDERID_ProgramFilesX64,
	UserProgramFiles: windows.FOLDERID_UserProgramFiles,
	UserProfiles:     windows.FOLDERID_UserProfiles,
	StartMenu:        windows.FOLDERID_StartMenu,
	Startup:          windows.FOLDERID_Startup,
	Programs:         windows.FOLDERID_Programs,
	SendTo:           windows.FOLDERID_SendTo,
	Templates:        windows.FOLDERID_Templates,
	QuickLaunch:      windows.FOLDERID_QuickLaunch,
	Fonts:            windows.FOLDERID_Fonts,
	System:           windows.FOLDERID_System,
	SystemX86:        windows.FOLDERID_SystemX86,
	Windows:          windows.FOLDERID_Windows,
	InternetCache:    windows.FOLDERID_InternetCache,
	History:          windows.FOLDERID_History,
	OneDrive:         windows.FOLDERID_SkyDrive,
}

var folderNames = map[Folder]string{
	Desktop:          "Desktop",
	Documents:        "Documents",
	Downloads:        "Downloads",
	Music:            "Music",
	Pictures:         "Pictures",
	Videos:           "Videos",
	Screenshots:      "Screenshots",
	SavedGames:       "SavedGames",
	Contacts:         "Contacts",
	Links:            "Links",
	Favorites:        "Favorites",
	Recent:           "Recent",
	Profile:          "Profile",
	Public:           "Public",
	LocalAppData:     "LocalAppData",
	RoamingAppData:   "RoamingAppData",
	ProgramData:      "ProgramData",
	ProgramFiles:     "ProgramFiles",
	ProgramFilesX86:  "ProgramFilesX86",
	ProgramFilesX64:  "ProgramFilesX64",
	UserProgramFiles: "UserProgramFiles",
	UserProfiles:     "UserProfiles",
	StartMenu:        "StartMenu",
	Startup:          "Startup",
	Programs:         "Programs",
	SendTo:           "SendTo",
	Templates:        "Templates",
	QuickLaunch:      "QuickLaunch",
	Fonts:            "Fonts",
	System:           "System",
	SystemX86:        "SystemX86",
	Windows:          "Windows",
	InternetCache:    "InternetCache",
	History:          "History",
	OneDrive:         "OneDrive",
}

func (f Folder) String() string {
	if name, ok := folderNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Folder(%d)", int(f))
}

// Path returns the filesystem path of the known folder.
func Path(f Folder) (string, error) {
	id, ok := folderIDs[f]
	if !ok {
		return "", fmt.Errorf("winfolder: unknown folder %s", f)
	}
	path, err := windows.KnownFolderPath(id, windows.KF_FLAG_DEFAULT)
	if err != nil {
		return "", fmt.Errorf("winfolder: resolve %s: %w", f, err)
	}
	return path, nil
}
