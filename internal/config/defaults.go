package config

// Engine and provider identifiers accepted in the config file.
const (
	EngineWhisper  = "whisper"
	EngineAPI      = "api"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	defaultConfigPath           = "~/.config/mediascribe/config.toml"
	defaultDataDir              = "data"
	defaultLogDir               = "~/.local/share/mediascribe/logs"
	defaultLockFileName         = ".mediascribe.lock"
	defaultMusicDir             = "~/Music"
	defaultVideosDir            = "~/Videos/OBS"
	defaultWhisperCommand       = "whisper"
	defaultWhisperModel         = "base"
	defaultWhisperDevice        = "cpu"
	defaultSpeechAPIBaseURL     = "https://api.openai.com/v1/audio/transcriptions"
	defaultSpeechAPIModel       = "whisper-1"
	defaultTranscriptionTimeout = 3600
	defaultOpenAIBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel          = "gpt-4"
	defaultGeminiModel          = "gemini-2.5-flash"
	defaultLLMTimeoutSeconds    = 120
	defaultSummaryMaxTokens     = 2000
	defaultSummaryTemperature   = 0.3
	defaultTodoMaxTokens        = 1500
	defaultTodoTemperature      = 0.2
	defaultMinTranscriptChars   = 100
	defaultWatchSettleSeconds   = 5
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	subdirAudio                 = "audio"
	subdirVideo                 = "video"
	subdirTranscripts           = "transcripts"
	subdirSummaries             = "summaries"
	subdirTodos                 = "todos"
)

var (
	defaultAudioExtensions           = []string{".wav", ".m4a", ".mp3", ".mp4", ".flac", ".aac"}
	defaultMusicExtensions           = []string{".wav", ".m4a", ".mp3", ".mp4", ".flac", ".aac", ".ogg", ".wma"}
	defaultVideoExtensions           = []string{".mp4", ".mov", ".mkv", ".avi"}
	defaultRecognizedVideoExtensions = []string{".webm", ".flv"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Sources: Sources{
			MusicDir:        defaultMusicDir,
			MusicRecursive:  true,
			CopyMusic:       true,
			VideosDir:       defaultVideosDir,
			VideosRecursive: false,
			CopyVideos:      true,
		},
		Extensions: Extensions{
			Audio:           cloneStrings(defaultAudioExtensions),
			Music:           cloneStrings(defaultMusicExtensions),
			Video:           cloneStrings(defaultVideoExtensions),
			RecognizedVideo: cloneStrings(defaultRecognizedVideoExtensions),
		},
		Transcription: Transcription{
			Engine:         EngineWhisper,
			Command:        defaultWhisperCommand,
			Model:          defaultWhisperModel,
			Device:         defaultWhisperDevice,
			APIBaseURL:     defaultSpeechAPIBaseURL,
			APIModel:       defaultSpeechAPIModel,
			TimeoutSeconds: defaultTranscriptionTimeout,
		},
		LLM: LLM{
			Provider:       ProviderOpenAI,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Summaries: Summaries{
			Enabled:            true,
			MaxTokens:          defaultSummaryMaxTokens,
			Temperature:        defaultSummaryTemperature,
			MinTranscriptChars: defaultMinTranscriptChars,
			FrontMatter:        true,
		},
		Todos: Todos{
			Enabled:            true,
			MaxTokens:          defaultTodoMaxTokens,
			Temperature:        defaultTodoTemperature,
			MinTranscriptChars: defaultMinTranscriptChars,
			FrontMatter:        true,
		},
		Watch: Watch{
			SettleSeconds: defaultWatchSettleSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
