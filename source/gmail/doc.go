// Package gmail implements source.Source on top of the Gmail API.
//
// Authorization uses an installed-app OAuth client (credentials.json from the
// Google Cloud console) and a saved user token (token.json). Run Authorize once
// to create the token; New reads both files and refreshes the token as needed.
//
// Listing follows nextPageToken until the result set is exhausted, or until
// the optional MaxResults cap is reached. Message bodies prefer the text/plain
// parts and fall back to text extracted from the text/html parts.
package gmail
