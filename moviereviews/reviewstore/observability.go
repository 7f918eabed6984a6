package reviewstore

const (
	logMsgSkippedRecord      = "reviewstore: skipped malformed review record"
	logMsgDroppedReaction    = "reviewstore: dropped unknown reaction symbol"
	logMsgReloadFailed       = "reviewstore: reloading reviews failed"
	logMsgSubscribed         = "reviewstore: subscribed to reviews"
	logMsgReviewPushed       = "reviewstore: review pushed"
	logMsgReactionWritten    = "reviewstore: reaction written"
	logMsgUnknownStoredValue = "reviewstore: stored reaction is not a known symbol"

	logAttrMovieID  = "movie_id"
	logAttrReviewID = "review_id"
	logAttrUserID   = "user_id"
	logAttrSymbol   = "symbol"
	logAttrError    = "error"
)
