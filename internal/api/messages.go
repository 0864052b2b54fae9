package api

// Response bodies. Clients match on these strings.
const (
	msgFolderNameRequired = "Folder name is required"
	msgFolderExists       = "Folder already exists"
	msgFolderCreated      = "Folder created successfully"
	msgCreateFolderFailed = "Error creating folder"
	msgListFoldersFailed  = "Error fetching folders"
	msgListFilesFailed    = "Error fetching files"
	msgNoFile             = "No file uploaded"
	msgFileUploaded       = "File uploaded successfully"
	msgUploadFailed       = "Error uploading file"
	msgFileNotFound       = "File not found"
	msgDownloadFailed     = "Error downloading file"
	msgFileTooLarge       = "File too large"
)
