// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

// Strings shown by the translator menu, the registry panel and the overlay.
const (
	EnableTranslator   MsgKey = "Enable translator"
	DisableTranslator  MsgKey = "Disable translator"
	SearchTranslations MsgKey = "Search translations"
	HideTranslated     MsgKey = "Hide translated"
	Save               MsgKey = "Save"
	Cancel             MsgKey = "Cancel"
	SaveFailed         MsgKey = "The translation could not be saved. Please try again."
	LoadFailed         MsgKey = "The translations could not be loaded."
	Unauthenticated    MsgKey = "You need to sign in to edit translations."
	Forbidden          MsgKey = "You are not allowed to edit translations."
	NotFound           MsgKey = "Not found"
	InternalError      MsgKey = "Something went wrong"
	RateLimited        MsgKey = "Too many changes. Please wait a moment."
	BadRequest         MsgKey = "The request is invalid."
)
