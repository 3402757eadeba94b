// Package grammar names the fixed opcode set the tunnel's dispatcher
// recognizes. It carries no behavior of its own — the field layout for each
// opcode lives in internal/tunnel, next to the policy hooks that need to
// interleave with it — but naming the opcodes here keeps the dispatcher's
// switch statement and any future re-implementation in sync with a single
// source of truth for "which opcodes exist."
package grammar

// Opcode is the single-byte packet tag every packet on the wire begins with.
type Opcode byte

const (
	KeepAlive             Opcode = 0x00
	Login                 Opcode = 0x01
	Handshake             Opcode = 0x02
	Chat                  Opcode = 0x03
	TimeUpdate            Opcode = 0x04
	PlayerInventory       Opcode = 0x05
	SpawnPosition         Opcode = 0x06
	UseEntity             Opcode = 0x07
	UpdateHealth          Opcode = 0x08
	Respawn               Opcode = 0x09
	Player                Opcode = 0x0A
	PlayerPosition        Opcode = 0x0B
	PlayerLook            Opcode = 0x0C
	PlayerPositionLook    Opcode = 0x0D
	PlayerDigging         Opcode = 0x0E
	PlayerBlockPlacement  Opcode = 0x0F
	HoldingChange         Opcode = 0x10
	UseBed                Opcode = 0x11
	Animation             Opcode = 0x12
	EntityAction          Opcode = 0x13
	NamedEntitySpawn      Opcode = 0x14
	CollectItem           Opcode = 0x16
	AddObjectVehicle      Opcode = 0x17
	MobSpawn              Opcode = 0x18
	EntityPainting        Opcode = 0x19
	ExperienceOrb         Opcode = 0x1A
	SteerVehicle          Opcode = 0x1B
	EntityVelocity        Opcode = 0x1C
	DestroyEntity         Opcode = 0x1D
	Entity                Opcode = 0x1E
	EntityRelativeMove    Opcode = 0x1F
	EntityLook            Opcode = 0x20
	EntityLookRelMove     Opcode = 0x21
	EntityTeleport        Opcode = 0x22
	EntityHeadLook        Opcode = 0x23
	EntityStatus          Opcode = 0x26
	AttachEntity          Opcode = 0x27
	EntityMetadata        Opcode = 0x28
	EntityEffect          Opcode = 0x29
	RemoveEntityEffect    Opcode = 0x2A
	Experience            Opcode = 0x2B
	EntityProperties      Opcode = 0x2C
	MapChunk              Opcode = 0x33
	MultiBlockChange      Opcode = 0x34
	BlockChange           Opcode = 0x35
	BlockAction           Opcode = 0x36
	MiningProgress        Opcode = 0x37
	ChunkBulk             Opcode = 0x38
	Explosion             Opcode = 0x3C
	SoundParticleEffect   Opcode = 0x3D
	NamedSoundEffect      Opcode = 0x3E
	Particle              Opcode = 0x3F
	NewInvalidState       Opcode = 0x46
	Thunderbolt           Opcode = 0x47
	OpenWindow            Opcode = 0x64
	CloseWindow           Opcode = 0x65
	WindowClick           Opcode = 0x66
	SetSlot               Opcode = 0x67
	WindowItems           Opcode = 0x68
	UpdateWindowProperty  Opcode = 0x69
	Transaction           Opcode = 0x6A
	CreativeInventoryAct  Opcode = 0x6B
	EnchantItem           Opcode = 0x6C
	UpdateSign            Opcode = 0x82
	ItemData              Opcode = 0x83
	EntityNBTUpdate       Opcode = 0x84
	SignUnknown           Opcode = 0x85
	BukkitContrib         Opcode = 0xC3
	IncrementStatistic    Opcode = 0xC8
	PlayerListItem        Opcode = 0xC9
	PlayerAbilities       Opcode = 0xCA
	TabCompletion         Opcode = 0xCB
	LocaleAndViewDistance Opcode = 0xCC
	LoginAndRespawn       Opcode = 0xCD
	ScoreboardObjectives  Opcode = 0xCE
	UpdateScore           Opcode = 0xCF
	DisplayScoreboard     Opcode = 0xD0
	Teams                 Opcode = 0xD1
	RedPower              Opcode = 0xD3
	ModLoaderMP           Opcode = 0xE6
	PluginMessage         Opcode = 0xFA
	EncryptionResponse    Opcode = 0xFC
	EncryptionRequest     Opcode = 0xFD
	ServerListPing        Opcode = 0xFE
	Disconnect            Opcode = 0xFF
)

// String names the opcode for logging and desync diagnostics.
func (o Opcode) String() string {
	if name, ok := names[o]; ok {
		return name
	}
	return "unknown"
}

var names = map[Opcode]string{
	KeepAlive: "keep-alive", Login: "login", Handshake: "handshake",
	Chat: "chat", TimeUpdate: "time-update", PlayerInventory: "player-inventory",
	SpawnPosition: "spawn-position", UseEntity: "use-entity", UpdateHealth: "update-health",
	Respawn: "respawn", Player: "player", PlayerPosition: "player-position",
	PlayerLook: "player-look", PlayerPositionLook: "player-position-look",
	PlayerDigging: "player-digging", PlayerBlockPlacement: "player-block-placement",
	HoldingChange: "holding-change", UseBed: "use-bed", Animation: "animation",
	EntityAction: "entity-action", NamedEntitySpawn: "named-entity-spawn",
	CollectItem: "collect-item", AddObjectVehicle: "add-object-vehicle",
	MobSpawn: "mob-spawn", EntityPainting: "entity-painting", ExperienceOrb: "experience-orb",
	SteerVehicle: "steer-vehicle", EntityVelocity: "entity-velocity", DestroyEntity: "destroy-entity",
	Entity: "entity", EntityRelativeMove: "entity-relative-move", EntityLook: "entity-look",
	EntityLookRelMove: "entity-look-relative-move", EntityTeleport: "entity-teleport",
	EntityHeadLook: "entity-head-look", EntityStatus: "entity-status", AttachEntity: "attach-entity",
	EntityMetadata: "entity-metadata", EntityEffect: "entity-effect", RemoveEntityEffect: "remove-entity-effect",
	Experience: "experience", EntityProperties: "entity-properties", MapChunk: "map-chunk",
	MultiBlockChange: "multi-block-change", BlockChange: "block-change", BlockAction: "block-action",
	MiningProgress: "mining-progress", ChunkBulk: "chunk-bulk", Explosion: "explosion",
	SoundParticleEffect: "sound-particle-effect", NamedSoundEffect: "named-sound-effect",
	Particle: "particle", NewInvalidState: "new-invalid-state", Thunderbolt: "thunderbolt",
	OpenWindow: "open-window", CloseWindow: "close-window", WindowClick: "window-click",
	SetSlot: "set-slot", WindowItems: "window-items", UpdateWindowProperty: "update-window-property",
	Transaction: "transaction", CreativeInventoryAct: "creative-inventory-action",
	EnchantItem: "enchant-item", UpdateSign: "update-sign", ItemData: "item-data",
	EntityNBTUpdate: "entity-nbt-update", SignUnknown: "sign-unknown", BukkitContrib: "bukkitcontrib",
	IncrementStatistic: "increment-statistic", PlayerListItem: "player-list-item",
	PlayerAbilities: "player-abilities", TabCompletion: "tab-completion",
	LocaleAndViewDistance: "locale-and-view-distance", LoginAndRespawn: "login-and-respawn",
	ScoreboardObjectives: "scoreboard-objectives", UpdateScore: "update-score",
	DisplayScoreboard: "display-scoreboard", Teams: "teams", RedPower: "red-power",
	ModLoaderMP: "modloadermp", PluginMessage: "plugin-message", EncryptionResponse: "encryption-response",
	EncryptionRequest: "encryption-request", ServerListPing: "server-list-ping", Disconnect: "disconnect",
}
